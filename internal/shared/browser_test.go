package shared

import (
	"errors"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	orig := getRuntime
	t.Cleanup(func() { getRuntime = orig })

	tc := []struct {
		runtime string
		want    string
		wantErr bool
	}{
		{runtime: "darwin", want: "open"},
		{runtime: "linux", want: "xdg-open"},
		{runtime: "windows", want: "cmd"},
		{runtime: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.runtime, func(t *testing.T) {
			getRuntime = func() string { return tt.runtime }

			cmd, err := browserCommand("https://comick.io/comic/x")
			if (err != nil) != tt.wantErr {
				t.Fatalf("browserCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cmd.Args[0] != tt.want {
				t.Errorf("browserCommand() = %v, want %v", cmd.Args[0], tt.want)
			}
		})
	}
}

func TestOpenBrowserRejectsRelativeURL(t *testing.T) {
	err := OpenBrowser("comic/one-piece")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
