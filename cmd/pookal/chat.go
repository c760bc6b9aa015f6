package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pookal/agent/proposal"
	"pookal/agent/runner"
	"pookal/internal/logging"
	"pookal/internal/svc"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the companion in the terminal",
		Run: func(cmd *cobra.Command, args []string) {
			runChat()
		},
	}
}

func runChat() {
	logging.Disable()
	svcCtx := svc.NewServiceContext(*ServerConfig)
	ctx := context.Background()

	fmt.Printf("Pookal (%s persona). Type your message, Ctrl+D to quit.\n", ServerConfig.Persona)

	sessionID := ""
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		res, err := svcCtx.Runner.ProcessTurn(ctx, sessionID, text)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		sessionID = res.SessionID
		fmt.Println(res.Message.Content)

		if res.Proposal != nil && res.Proposal.Status == proposal.StatusPending {
			confirmPending(ctx, svcCtx, scanner, res.Proposal)
		}
	}
}

// confirmPending prompts for a y/n decision on a freshly created proposal.
func confirmPending(ctx context.Context, svcCtx *svc.ServiceContext, scanner *bufio.Scanner, p *proposal.Proposal) {
	label := ""
	if p.Sensitive {
		label = " (this contacts another person)"
	}
	fmt.Printf("  action: %s %v%s\n", p.Capability, p.Args, label)
	fmt.Print("  confirm? [y/N] ")
	if !scanner.Scan() {
		return
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	if answer != "y" && answer != "yes" {
		declined, err := svcCtx.Proposals.Decline(p.ID)
		if err == nil {
			fmt.Println(runner.DescribeOutcome(declined))
		}
		return
	}

	resolved, err := svcCtx.Proposals.Confirm(ctx, p.ID, svcCtx.Registry)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(runner.DescribeOutcome(resolved))
}
