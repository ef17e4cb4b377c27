// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"math"
	"testing"

	"github.com/teammv/mvc/pkg/scriptfile"
)

func TestCheckFile(t *testing.T) {
	t.Parallel()

	f := &scriptfile.File{Scripts: []scriptfile.Definition{
		{Name: "push", Args: 1, Script: "git push origin {0}", Type: scriptfile.BackendShell},
		{Name: "push", Args: 0, Script: "git push", Type: scriptfile.BackendShell},
		{Name: "cp", Args: 1, Script: "cp {0} {1}", Type: scriptfile.BackendShell},
		{Name: "tag", Args: 2, Script: "git tag {0}", Type: scriptfile.BackendShell},
		{Name: "box", Args: 0, Script: "run", Type: "container"},
	}}

	findings := CheckFile(f, []scriptfile.BackendType{scriptfile.BackendShell, scriptfile.BackendVirtual})

	want := map[FindingKind]int{
		FindingDuplicateName:         1,
		FindingPlaceholderOutOfRange: 1,
		FindingUnusedArgument:        1,
		FindingUnknownBackend:        1,
	}
	got := map[FindingKind]int{}
	for _, finding := range findings {
		got[finding.Kind]++
	}
	for kind, n := range want {
		if got[kind] != n {
			t.Errorf("%s findings = %d, want %d (all: %v)", kind, got[kind], n, findings)
		}
	}
	if len(findings) != 4 {
		t.Errorf("got %d findings, want 4: %v", len(findings), findings)
	}

	for _, finding := range findings {
		if finding.Kind == FindingDuplicateName && finding.Index != 1 {
			t.Errorf("duplicate reported at index %d, want 1", finding.Index)
		}
	}
}

func TestCheckFile_Clean(t *testing.T) {
	t.Parallel()

	f := &scriptfile.File{Scripts: []scriptfile.Definition{
		{Name: "commit", Args: 1, Script: "git commit -m {0}", Type: scriptfile.BackendShell},
		{Name: "lint", Args: 0, Script: "golangci-lint run", Type: "sh"},
	}}
	known := []scriptfile.BackendType{scriptfile.BackendShell, scriptfile.BackendVirtual}
	if findings := CheckFile(f, known); len(findings) != 0 {
		t.Errorf("unexpected findings: %v", findings)
	}
}

func TestCheckFile_ArgsBeyondLimit(t *testing.T) {
	t.Parallel()

	f := &scriptfile.File{Scripts: []scriptfile.Definition{
		{Name: "typo", Args: math.MaxInt, Script: "echo", Type: scriptfile.BackendShell},
	}}
	findings := CheckFile(f, nil)
	if len(findings) != scriptfile.MaxArgs {
		t.Errorf("got %d findings, want %d unused arguments", len(findings), scriptfile.MaxArgs)
	}
}
