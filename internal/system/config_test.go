package system

import "testing"

func TestIsContainer(t *testing.T) {
	tests := []struct {
		virtType string
		want     bool
	}{
		{virtType: "container", want: true},
		{virtType: "vm", want: false},
		{virtType: "physical", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.virtType, func(t *testing.T) {
			cfg := &Config{VirtType: tt.virtType}
			if got := cfg.IsContainer(); got != tt.want {
				t.Errorf("IsContainer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasAptPackageManager(t *testing.T) {
	if !(&Config{PackageManager: "apt"}).HasAptPackageManager() {
		t.Error("apt should be recognized")
	}
	if (&Config{PackageManager: "dnf"}).HasAptPackageManager() {
		t.Error("dnf is not the supported install path")
	}
	if (&Config{}).HasAptPackageManager() {
		t.Error("absent package manager should not pass")
	}
}

func TestInvokingUser(t *testing.T) {
	t.Setenv("SUDO_USER", "deploy")
	if got := invokingUser(); got != "deploy" {
		t.Errorf("invokingUser() = %q, want deploy", got)
	}

	t.Setenv("SUDO_USER", "")
	if got := invokingUser(); got != "root" {
		t.Errorf("invokingUser() = %q, want root fallback", got)
	}

	t.Setenv("SUDO_USER", "root")
	if got := invokingUser(); got != "root" {
		t.Errorf("invokingUser() = %q, want root", got)
	}
}
