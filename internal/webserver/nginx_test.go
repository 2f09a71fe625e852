package webserver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sitedeploy/internal/backup"
	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
	"sitedeploy/internal/system"
)

type fakeExecutor struct {
	commands []string
	failures map[string]error
}

func (f *fakeExecutor) exec(name string, args ...string) error {
	key := strings.Join(append([]string{name}, args...), " ")
	f.commands = append(f.commands, key)
	if f.failures == nil {
		return nil
	}
	return f.failures[key]
}

func (f *fakeExecutor) Run(name string, args ...string) error {
	return f.exec(name, args...)
}

func (f *fakeExecutor) Output(name string, args ...string) ([]byte, error) {
	return nil, f.exec(name, args...)
}

func testLogger() logger.Logger {
	return logger.NewStandardLogger(logger.WithOutput(io.Discard))
}

func testLayout(t *testing.T) *system.Layout {
	t.Helper()
	root := t.TempDir()

	layout := &system.Layout{
		WebRoot:        filepath.Join(root, "www"),
		SitesAvailable: filepath.Join(root, "sites-available"),
		SitesEnabled:   filepath.Join(root, "sites-enabled"),
		LogDir:         filepath.Join(root, "log"),
		BackupRoot:     filepath.Join(root, "backups"),
		StateDir:       filepath.Join(root, "state"),
	}

	for _, dir := range []string{layout.WebRoot, layout.SitesAvailable, layout.SitesEnabled, layout.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return layout
}

func newTestConfigurator(t *testing.T, exec *fakeExecutor) (*Configurator, *system.Layout) {
	t.Helper()
	layout := testLayout(t)
	backups := backup.NewManager(layout.BackupRoot, 5, nil)
	return NewConfigurator(layout, exec, backups, testLogger()), layout
}

func TestVhostTemplate(t *testing.T) {
	conf, err := renderTemplate("vhost", vhostTemplate, templateData{
		ServerName:   "app.example.com",
		DocumentRoot: "/var/www/app.example.com",
		AccessLog:    "/var/log/nginx/app.example.com.access.log",
		ErrorLog:     "/var/log/nginx/app.example.com.error.log",
	})
	if err != nil {
		t.Fatalf("renderTemplate() error = %v", err)
	}

	for _, want := range []string{
		"listen 80;",
		"server_name app.example.com;",
		"root /var/www/app.example.com;",
		"access_log /var/log/nginx/app.example.com.access.log;",
	} {
		if !strings.Contains(string(conf), want) {
			t.Errorf("rendered vhost missing %q:\n%s", want, conf)
		}
	}
	if strings.Contains(string(conf), "ssl") {
		t.Errorf("HTTP-only vhost should not contain TLS directives:\n%s", conf)
	}
}

func TestSiteExists(t *testing.T) {
	c, layout := newTestConfigurator(t, &fakeExecutor{})

	if c.SiteExists("app.example.com") {
		t.Error("SiteExists true before any vhost written")
	}

	if err := os.WriteFile(layout.VhostPath("app.example.com"), []byte("server {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !c.SiteExists("app.example.com") {
		t.Error("SiteExists false after vhost written")
	}
}

func TestWritePlaceholder(t *testing.T) {
	c, layout := newTestConfigurator(t, &fakeExecutor{})
	docRoot := layout.DocumentRoot("app.example.com")
	if err := os.MkdirAll(docRoot, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := c.WritePlaceholder("app.example.com", "app.example.com"); err != nil {
		t.Fatalf("WritePlaceholder() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(docRoot, "index.html"))
	if err != nil {
		t.Fatalf("placeholder not written: %v", err)
	}
	if !strings.Contains(string(data), "app.example.com") {
		t.Errorf("placeholder does not mention the site:\n%s", data)
	}

	// A second call must not clobber existing content.
	if err := os.WriteFile(filepath.Join(docRoot, "index.html"), []byte("real site"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.WritePlaceholder("app.example.com", "app.example.com"); err != nil {
		t.Fatalf("WritePlaceholder() second call error = %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(docRoot, "index.html"))
	if string(data) != "real site" {
		t.Errorf("existing index overwritten: %q", data)
	}
}

func TestConfigureWritesEnablesAndReloads(t *testing.T) {
	exec := &fakeExecutor{}
	c, layout := newTestConfigurator(t, exec)

	if err := c.Configure("app.example.com", "app.example.com"); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	conf, err := os.ReadFile(layout.VhostPath("app.example.com"))
	if err != nil {
		t.Fatalf("vhost not written: %v", err)
	}
	if !strings.Contains(string(conf), "server_name app.example.com;") {
		t.Errorf("vhost content wrong:\n%s", conf)
	}

	target, err := os.Readlink(layout.EnabledPath("app.example.com"))
	if err != nil {
		t.Fatalf("site not enabled: %v", err)
	}
	if target != layout.VhostPath("app.example.com") {
		t.Errorf("enabled link points at %q", target)
	}

	joined := strings.Join(exec.commands, "\n")
	if !strings.Contains(joined, "nginx -t") {
		t.Error("configuration was not validated")
	}
	if !strings.Contains(joined, "systemctl reload nginx") {
		t.Error("nginx was not reloaded")
	}

	// Second run over the same site must succeed and keep the same link.
	if err := c.Configure("app.example.com", "app.example.com"); err != nil {
		t.Fatalf("Configure() second run error = %v", err)
	}
}

func TestConfigureBacksUpExistingVhost(t *testing.T) {
	c, layout := newTestConfigurator(t, &fakeExecutor{})

	old := []byte("server { old }")
	if err := os.WriteFile(layout.VhostPath("app.example.com"), old, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.Configure("app.example.com", "app.example.com"); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(layout.BackupRoot, backup.CategorySiteConfig))
	if err != nil {
		t.Fatalf("no backup category directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one backup, got %d", len(entries))
	}
}

func TestConfigureValidationFailure(t *testing.T) {
	exec := &fakeExecutor{failures: map[string]error{
		"nginx -t": fmt.Errorf("exit status 1"),
	}}
	c, _ := newTestConfigurator(t, exec)

	err := c.Configure("app.example.com", "app.example.com")
	if err == nil {
		t.Fatal("expected validation error")
	}

	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeConfigValidate {
		t.Errorf("expected %s, got %v", apperrors.CodeConfigValidate, err)
	}
	if apperrors.ExitCodeFor(err) != 3 {
		t.Errorf("exit code = %d, want 3", apperrors.ExitCodeFor(err))
	}

	for _, cmd := range exec.commands {
		if cmd == "systemctl reload nginx" {
			t.Error("reload attempted after failed validation")
		}
	}
}

func TestConfigureReloadFailure(t *testing.T) {
	exec := &fakeExecutor{failures: map[string]error{
		"systemctl reload nginx": fmt.Errorf("exit status 1"),
	}}
	c, _ := newTestConfigurator(t, exec)

	err := c.Configure("app.example.com", "app.example.com")
	if err == nil {
		t.Fatal("expected reload error")
	}

	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeConfigReload {
		t.Errorf("expected %s, got %v", apperrors.CodeConfigReload, err)
	}
}
