package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/baharkarakas/sagepaypi/internal/auth"
)

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	hashPasswordCmd.SetOut(&out)
	if err := hashPasswordCmd.RunE(hashPasswordCmd, []string{"s3cret"}); err != nil {
		t.Fatal(err)
	}
	hash := strings.TrimSpace(out.String())
	if err := auth.VerifyPassword("s3cret", hash); err != nil {
		t.Fatalf("printed hash does not verify: %v", err)
	}
}

func TestTxCommandsRequireOneArgument(t *testing.T) {
	for _, c := range []string{"outcome", "release", "abort", "void", "repeat", "refund", "token"} {
		cmd, _, err := rootCmd.Find([]string{c})
		if err != nil {
			t.Fatalf("%s: %v", c, err)
		}
		if err := cmd.Args(cmd, nil); err == nil {
			t.Errorf("%s accepted zero arguments", c)
		}
	}
}
