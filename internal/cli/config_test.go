package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/catalog/internal/cli"
)

// Tests for print-config command.

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func Test_Print_Config_Defaults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "effective_cwd="+c.Dir)
	cli.AssertContains(t, stdout, "data=(builtin)")
	cli.AssertContains(t, stdout, "locale=en")
	cli.AssertContains(t, stdout, "log_level=(off)")
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Print_Config_From_Config_File_With_Comments_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, filepath.Join(c.Dir, ".catalog.json"), `{
		// This is a comment
		"data": "shop.yaml",
		"locale": "de",
	}`)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "data="+filepath.Join(c.Dir, "shop.yaml"))
	cli.AssertContains(t, stdout, "locale=de")
	cli.AssertContains(t, stdout, "project_config="+filepath.Join(c.Dir, ".catalog.json"))
}

func Test_Print_Config_Does_Not_Read_Data_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--data", "not-there.db", "print-config")
	cli.AssertContains(t, stdout, "data="+filepath.Join(c.Dir, "not-there.db"))
}

func Test_Print_Config_Explicit_Config_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, filepath.Join(c.Dir, "custom.json"), `{"data": "custom.json"}`)

	stdout := c.MustRun("-c", "custom.json", "print-config")
	cli.AssertContains(t, stdout, "data="+filepath.Join(c.Dir, "custom.json"))

	stdout = c.MustRun("--config=custom.json", "print-config")
	cli.AssertContains(t, stdout, "project_config="+filepath.Join(c.Dir, "custom.json"))
}

func Test_Print_Config_Flags_Override_Files_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, filepath.Join(c.Dir, ".catalog.json"), `{"data": "from-file.json", "locale": "fr"}`)

	stdout := c.MustRun("--data=/abs/from-cli.db", "--locale", "sv", "print-config")
	cli.AssertContains(t, stdout, "data=/abs/from-cli.db")
	cli.AssertContains(t, stdout, "locale=sv")
}

func Test_Print_Config_Global_Config_When_Xdg_Set(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	xdg := t.TempDir()
	c.Env["XDG_CONFIG_HOME"] = xdg
	writeFile(t, filepath.Join(xdg, "catalog", "config.json"), `{"log_level": "warn"}`)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "log_level=warn")
	cli.AssertContains(t, stdout, "global_config="+filepath.Join(xdg, "catalog", "config.json"))
}

func Test_Print_Config_Missing_Explicit_Config_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--config", "nope.json", "print-config")
	cli.AssertContains(t, stderr, "nope.json")
}

func Test_Locale_Changes_Sort_Order_When_Configured(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("nordic.json", `{
		"people": [{"id": 1, "name": "Ola", "sex": "m"}],
		"groupings": [{"id": 1, "title": "Misc", "icon": "📦", "owner_id": 1}],
		"items": [
			{"id": 1, "name": "Ödla", "grouping_id": 1},
			{"id": 2, "name": "Zebra", "grouping_id": 1},
		],
	}`)

	en := names(t, c.MustRun("-d", "nordic.json", "ls", "--json", "--sort", "name"))
	sv := names(t, c.MustRun("-d", "nordic.json", "--locale", "sv", "ls", "--json", "--sort", "name"))

	if en[0] != "Ödla" {
		t.Errorf("en order=%v, want Ödla first", en)
	}

	if sv[0] != "Zebra" {
		t.Errorf("sv order=%v, want Zebra first", sv)
	}
}
