// Package foam locates and drives the external meshing toolchain
// (OpenFOAM-family utilities, cfMesh, snappyHexMesh and gmsh): runtime
// flavour detection, path translation into the subsystem the tools run
// in, environment setup and command execution.
package foam

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Runtime identifies the subsystem the meshing tools execute in.
type Runtime string

const (
	// Posix runs tools natively (Linux, macOS).
	Posix Runtime = "Posix"
	// BlueCFD runs tools under the MinGW subsystem shipped with
	// blueCFD-Core on Windows.
	BlueCFD Runtime = "BlueCFD"
	// WSL runs tools under the Windows Subsystem for Linux.
	WSL Runtime = "BashWSL"
)

// DefaultInstallDirs lists standard install locations searched when no
// installation directory is configured.
var DefaultInstallDirs = map[string][]string{
	"windows": {
		`C:\Program Files\blueCFD-Core-2017\OpenFOAM-5.x`,
		`C:\Program Files\blueCFD-Core-2016\OpenFOAM-4.x`,
	},
	"linux": {
		"/opt/openfoam4", "/opt/openfoam5", "/opt/openfoam6", "/opt/openfoam-dev",
		"~/OpenFOAM/OpenFOAM-6.x", "~/OpenFOAM/OpenFOAM-6.0",
		"~/OpenFOAM/OpenFOAM-5.x", "~/OpenFOAM/OpenFOAM-5.0",
		"~/OpenFOAM/OpenFOAM-4.x", "~/OpenFOAM/OpenFOAM-4.0", "~/OpenFOAM/OpenFOAM-4.1",
		"~/OpenFOAM/OpenFOAM-dev",
	},
}

// DetectRuntime returns the runtime flavour for the host platform.
func DetectRuntime() Runtime {
	if runtime.GOOS == "windows" {
		return BlueCFD
	}
	return Posix
}

// validInstallation reports whether dir looks like a foam installation
// (contains etc/bashrc).
func validInstallation(dir string) bool {
	if dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, "etc", "bashrc"))
	return err == nil
}

// DetectInstallation finds the toolchain install directory: an
// explicitly configured dir wins, then $WM_PROJECT_DIR, then the
// standard locations for the platform.
func DetectInstallation(configured string) (string, error) {
	if configured != "" {
		if !filepath.IsAbs(configured) || !validInstallation(configured) {
			return "", fmt.Errorf("directory %q is not a valid installation", configured)
		}
		return configured, nil
	}
	if dir := os.Getenv("WM_PROJECT_DIR"); validInstallation(dir) {
		return dir, nil
	}
	home, _ := os.UserHomeDir()
	for _, d := range DefaultInstallDirs[runtime.GOOS] {
		if strings.HasPrefix(d, "~") {
			d = filepath.Join(home, d[1:])
		}
		if validInstallation(d) {
			return d, nil
		}
	}
	return "", fmt.Errorf("installation path not set and not found in standard locations")
}

// TranslatePath transforms a host path to the perspective of the
// subsystem the tools run in.
func TranslatePath(rt Runtime, p string) string {
	switch rt {
	case WSL:
		// C:\Path -> /mnt/c/Path
		if drive, tail, ok := splitDrive(p); ok {
			return "/mnt/" + strings.ToLower(drive) + strings.ReplaceAll(tail, `\`, "/")
		}
		return strings.ReplaceAll(p, `\`, "/")
	case BlueCFD:
		// c:\path -> /c/path
		if drive, tail, ok := splitDrive(p); ok {
			return "/" + strings.ToLower(drive) + strings.ReplaceAll(tail, `\`, "/")
		}
		return strings.ReplaceAll(p, `\`, "/")
	default:
		return p
	}
}

// ReverseTranslatePath transforms a path from the tool subsystem's
// perspective back to the host's.
func ReverseTranslatePath(rt Runtime, p string) string {
	parts := strings.Split(p, "/")
	switch rt {
	case WSL:
		// /mnt/c/Path -> C:\Path
		if strings.HasPrefix(p, "/mnt/") && len(parts) >= 3 {
			return strings.ToUpper(parts[2]) + `:\` + strings.Join(parts[3:], `\`)
		}
		return strings.ReplaceAll(p, "/", `\`)
	case BlueCFD:
		// /c/path -> C:\path
		if strings.HasPrefix(p, "/") && len(parts) >= 2 && len(parts[1]) == 1 {
			return strings.ToUpper(parts[1]) + `:\` + strings.Join(parts[2:], `\`)
		}
		return strings.ReplaceAll(p, "/", `\`)
	default:
		return p
	}
}

// splitDrive splits "C:\tail" into ("c", `\tail`).
func splitDrive(p string) (drive, tail string, ok bool) {
	if len(p) >= 2 && p[1] == ':' {
		return strings.ToLower(p[:1]), p[2:], true
	}
	return "", p, false
}

// RunEnvironment returns environment settings required by the runtime,
// as KEY=VALUE pairs.
func RunEnvironment(rt Runtime) []string {
	if rt == BlueCFD {
		return []string{
			"MSYSTEM=MINGW64",
			"USERNAME=ofuser",
			"USER=ofuser",
			"HOME=/home/ofuser",
		}
	}
	return nil
}

// PatchType maps a boundary condition type and subtype to the mesher
// patch type.
func PatchType(bcType, bcSubType string) string {
	switch bcType {
	case "wall":
		return "wall"
	case "empty":
		return "empty"
	case "constraint":
		switch bcSubType {
		case "symmetry":
			return "symmetry"
		case "cyclic":
			return "cyclic"
		case "wedge":
			return "wedge"
		case "twoDBoundingPlane", "empty":
			return "empty"
		default:
			return "patch"
		}
	default:
		return "patch"
	}
}
