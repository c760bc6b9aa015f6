// Package cli defines the pookal command tree.
package cli

import (
	"github.com/spf13/cobra"

	"pookal/internal/config"
)

// ServerConfig is the loaded configuration, shared by all subcommands.
var ServerConfig *config.Config

// SetupRootCmd builds the command tree. Running with no subcommand starts
// the server.
func SetupRootCmd(c *config.Config) *cobra.Command {
	ServerConfig = c

	var configFile string

	rootCmd := &cobra.Command{
		Use:     "pookal",
		Short:   "Pookal is a personal safety companion",
		Long:    "Pookal is a conversational safety companion. It chats, plans safer routes, and can alert trusted contacts by SMS or call, always with your confirmation.",
		Version: config.Version,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file layered over the embedded defaults")
	rootCmd.PersistentFlags().IntVar(&c.Port, "port", c.Port, "HTTP port to listen on")
	rootCmd.PersistentFlags().StringVar(&c.Persona, "persona", c.Persona, "companion persona (lily, sage, marigold, orchid)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			return nil
		}
		port, persona := c.Port, c.Persona
		if err := c.MergeFile(configFile); err != nil {
			return err
		}
		// Flags given on the command line beat the file.
		if rootCmd.PersistentFlags().Changed("port") {
			c.Port = port
		}
		if rootCmd.PersistentFlags().Changed("persona") {
			c.Persona = persona
		}
		return nil
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(voiceCmd())
	rootCmd.AddCommand(personasCmd())
	return rootCmd
}
