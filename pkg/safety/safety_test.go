package safety

import (
	"context"
	"errors"
	"testing"
)

func TestIsDestructive(t *testing.T) {
	destructive := []string{
		"rm -rf /tmp/build",
		"rm -f output.log",
		"sudo shutdown -h now",
		"git reset --hard HEAD~3",
		"git push origin main --force",
		"git clean -fd",
		"taskkill /F /IM notepad.exe",
		"pkill -9 chrome",
		"dd if=/dev/zero of=/dev/sda",
		"Remove-Item C:\\temp -Recurse",
		"mkfs.ext4 /dev/sdb1",
	}
	for _, cmd := range destructive {
		if !IsDestructive(cmd) {
			t.Errorf("IsDestructive(%q) = false, want true", cmd)
		}
	}

	benign := []string{
		"ls -la",
		"git status",
		"git log --oneline",
		"echo hello",
		"cat README.md",
		"mkdir -p build",
		"grep -r pattern .",
		"browser-cli navigate https://example.com",
	}
	for _, cmd := range benign {
		if IsDestructive(cmd) {
			t.Errorf("IsDestructive(%q) = true, want false", cmd)
		}
	}
}

func TestPartition(t *testing.T) {
	commands := []string{"ls", "rm -rf /tmp/x", "git status", "shutdown now"}
	safe, dangerous := Partition(commands)
	if len(safe) != 2 || safe[0] != "ls" || safe[1] != "git status" {
		t.Errorf("safe = %v", safe)
	}
	if len(dangerous) != 2 || dangerous[0] != "rm -rf /tmp/x" || dangerous[1] != "shutdown now" {
		t.Errorf("dangerous = %v", dangerous)
	}
}

func TestGateSafeBatchSkipsConfirmer(t *testing.T) {
	called := false
	gate := &Gate{
		SafeMode: true,
		Confirmer: ConfirmerFunc(func(ctx context.Context, req ConfirmRequest) (bool, error) {
			called = true
			return false, nil
		}),
	}
	dangerous, err := gate.Check(context.Background(), []string{"ls", "git status"}, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dangerous) != 0 {
		t.Errorf("dangerous = %v, want none", dangerous)
	}
	if called {
		t.Error("confirmer consulted for a safe batch")
	}
}

func TestGateApproveAndReject(t *testing.T) {
	commands := []string{"echo hi", "rm -rf build"}

	approve := &Gate{SafeMode: true, Confirmer: ConfirmerFunc(func(ctx context.Context, req ConfirmRequest) (bool, error) {
		if len(req.Dangerous) != 1 || req.Dangerous[0] != "rm -rf build" {
			t.Errorf("dangerous subset = %v", req.Dangerous)
		}
		return true, nil
	})}
	if _, err := approve.Check(context.Background(), commands, "", false); err != nil {
		t.Fatalf("approved batch returned error: %v", err)
	}

	reject := &Gate{SafeMode: true, Confirmer: ConfirmerFunc(func(ctx context.Context, req ConfirmRequest) (bool, error) {
		return false, nil
	})}
	if _, err := reject.Check(context.Background(), commands, "", false); !errors.Is(err, ErrRejected) {
		t.Fatalf("rejected batch error = %v, want ErrRejected", err)
	}
}

func TestGateForceAndDisabled(t *testing.T) {
	commands := []string{"rm -rf build"}

	gate := &Gate{SafeMode: true, Confirmer: ConfirmerFunc(func(ctx context.Context, req ConfirmRequest) (bool, error) {
		t.Error("confirmer consulted with force set")
		return false, nil
	})}
	dangerous, err := gate.Check(context.Background(), commands, "", true)
	if err != nil {
		t.Fatalf("forced batch returned error: %v", err)
	}
	if len(dangerous) != 1 {
		t.Errorf("dangerous = %v, want the rm command reported", dangerous)
	}

	off := &Gate{SafeMode: false}
	if _, err := off.Check(context.Background(), commands, "", false); err != nil {
		t.Fatalf("safe mode off returned error: %v", err)
	}
}

func TestGateNilConfirmerDenies(t *testing.T) {
	gate := &Gate{SafeMode: true}
	if _, err := gate.Check(context.Background(), []string{"rm -rf x"}, "", false); !errors.Is(err, ErrRejected) {
		t.Fatalf("nil confirmer error = %v, want ErrRejected", err)
	}
}
