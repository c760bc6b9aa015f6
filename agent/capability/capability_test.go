package capability

import (
	"context"
	"strings"
	"testing"
)

func TestSchemaValidate(t *testing.T) {
	schema := Schema{
		{Name: "origin", Required: true, MinLen: 3},
		{Name: "destination", Required: true, MinLen: 3},
		{Name: "mode", Default: "walking", Enum: []string{"walking", "driving", "transit", "bicycling"}},
	}

	cases := []struct {
		name    string
		raw     map[string]any
		want    map[string]string
		wantErr string
	}{
		{
			name: "default applied when absent",
			raw:  map[string]any{"origin": "MG Road", "destination": "Indiranagar"},
			want: map[string]string{"origin": "MG Road", "destination": "Indiranagar", "mode": "walking"},
		},
		{
			name: "explicit value wins over default",
			raw:  map[string]any{"origin": "MG Road", "destination": "Indiranagar", "mode": "driving"},
			want: map[string]string{"origin": "MG Road", "destination": "Indiranagar", "mode": "driving"},
		},
		{
			name:    "missing required",
			raw:     map[string]any{"origin": "MG Road"},
			wantErr: `missing required argument "destination"`,
		},
		{
			name:    "too short",
			raw:     map[string]any{"origin": "MG", "destination": "Indiranagar"},
			wantErr: `"origin" must be at least 3 characters`,
		},
		{
			name:    "enum violation",
			raw:     map[string]any{"origin": "MG Road", "destination": "Indiranagar", "mode": "teleport"},
			wantErr: `"mode" must be one of`,
		},
		{
			name:    "non-string rejected, not coerced",
			raw:     map[string]any{"origin": 42, "destination": "Indiranagar"},
			wantErr: `"origin" must be a string`,
		},
		{
			name: "unknown keys dropped",
			raw:  map[string]any{"origin": "MG Road", "destination": "Indiranagar", "speed": "fast"},
			want: map[string]string{"origin": "MG Road", "destination": "Indiranagar", "mode": "walking"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := schema.Validate(tc.raw)
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("Validate() = %v, want error containing %q", got, tc.wantErr)
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("error = %q, want it to contain %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("got[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestSchemaFirstViolationWins(t *testing.T) {
	schema := Schema{
		{Name: "a", Required: true},
		{Name: "b", Required: true},
	}
	_, err := schema.Validate(map[string]any{})
	if err == nil || !strings.Contains(err.Error(), `"a"`) {
		t.Fatalf("error = %v, want first field reported", err)
	}
}

func TestRegistryInvoke(t *testing.T) {
	calls := 0
	reg := NewRegistry()
	reg.Register(&Capability{
		Name: "echo",
		Schema: Schema{
			{Name: "text", Required: true, MinLen: 2},
		},
		Run: func(_ context.Context, args map[string]string) (*ExecutionResult, error) {
			calls++
			return &ExecutionResult{OK: true, Data: map[string]any{"text": args["text"]}}, nil
		},
	})

	res, err := reg.Invoke(context.Background(), "echo", map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !res.OK || res.Data["text"] != "hello" {
		t.Errorf("result = %+v", res)
	}
	if calls != 1 {
		t.Errorf("executor ran %d times, want 1", calls)
	}
}

func TestRegistryInvokeUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Invoke(context.Background(), "nope", map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "unknown capability") {
		t.Fatalf("error = %v", err)
	}
}

func TestRegistryInvokeValidationSkipsExecutor(t *testing.T) {
	calls := 0
	reg := NewRegistry()
	reg.Register(&Capability{
		Name:   "strict",
		Schema: Schema{{Name: "text", Required: true}},
		Run: func(_ context.Context, _ map[string]string) (*ExecutionResult, error) {
			calls++
			return &ExecutionResult{OK: true}, nil
		},
	})

	_, err := reg.Invoke(context.Background(), "strict", map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "invalid arguments") {
		t.Fatalf("error = %v", err)
	}
	if calls != 0 {
		t.Errorf("executor ran %d times on invalid args, want 0", calls)
	}
}

func TestRegistryListSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Capability{Name: "twilio.sms", Sensitive: true})
	reg.Register(&Capability{Name: "maps.safe_route"})
	reg.Register(&Capability{Name: "twilio.call", Sensitive: true})

	list := reg.List()
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	want := []string{"maps.safe_route", "twilio.call", "twilio.sms"}
	for i, d := range list {
		if d.Name != want[i] {
			t.Errorf("list[%d] = %q, want %q", i, d.Name, want[i])
		}
	}
	if !list[1].Sensitive || !list[2].Sensitive {
		t.Error("twilio capabilities should be marked sensitive")
	}
}
