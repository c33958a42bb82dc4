package foam

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// gmsh versions before this predate the OpenCASCADE kernel features
// the geometry export relies on.
const minGmshMajor, minGmshMinor = 2, 13

var versionRe = regexp.MustCompile(`(\d+)\.(\d+)`)

// CheckDependencies probes the external tools the mesher drives and
// returns a human-readable report of everything missing or too old.
// An empty report means all checks passed.
func CheckDependencies(ctx context.Context, env *Env) string {
	var b strings.Builder

	if env == nil {
		b.WriteString("no usable installation found: set the installation directory or WM_PROJECT_DIR\n")
	} else {
		if out, err := env.RunCommand(ctx, "echo $WM_PROJECT_VERSION", ""); err != nil {
			fmt.Fprintf(&b, "unable to run commands in the installation at %s: %v\n", env.InstallDir, err)
		} else if strings.TrimSpace(out) == "" {
			fmt.Fprintf(&b, "installation at %s did not report a version\n", env.InstallDir)
		}
		if _, err := env.RunCommand(ctx, "which cartesianMesh", ""); err != nil {
			b.WriteString("cartesianMesh (cfMesh) not found in the installation\n")
		}
		if _, err := env.RunCommand(ctx, "which snappyHexMesh", ""); err != nil {
			b.WriteString("snappyHexMesh not found in the installation\n")
		}
	}

	gmshPath, err := exec.LookPath("gmsh")
	if err != nil {
		b.WriteString("gmsh not found on PATH\n")
	} else {
		out, err := exec.CommandContext(ctx, gmshPath, "-version").CombinedOutput()
		if err != nil {
			fmt.Fprintf(&b, "gmsh found but not runnable: %v\n", err)
		} else if msg := checkGmshVersion(string(out)); msg != "" {
			b.WriteString(msg + "\n")
		}
	}
	return b.String()
}

func checkGmshVersion(out string) string {
	m := versionRe.FindStringSubmatch(out)
	if m == nil {
		return fmt.Sprintf("could not parse gmsh version from %q", strings.TrimSpace(out))
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	if major < minGmshMajor || (major == minGmshMajor && minor < minGmshMinor) {
		return fmt.Sprintf("gmsh version %s.%s is older than the minimum %d.%d",
			m[1], m[2], minGmshMajor, minGmshMinor)
	}
	return ""
}
