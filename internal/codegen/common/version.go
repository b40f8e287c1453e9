package common

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/Alia5/giopgen/internal/codegen/common.Version=x.y.z"
var Version = ""

// GetVersion returns the version set at build time via ldflags, else the
// module version of a `go install`ed binary, else "0.0.1-dev".
func GetVersion() (string, error) {
	v := Version
	if v == "" {
		v = moduleVersion()
	}
	if v == "" {
		return "0.0.1-dev", nil
	}

	version := strings.TrimPrefix(v, "v")
	baseVersion := strings.SplitN(version, "-", 2)[0]
	if !strings.Contains(baseVersion, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", v)
	}

	return version, nil
}

func moduleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "(devel)" {
		return ""
	}
	return info.Main.Version
}

// PluginVersion reduces a version like "1.2.3-dirty" to the "1.2.3" form a
// plugin version string carries.
func PluginVersion(version string) string {
	major, minor, patch := ParseVersion(version)
	return strconv.Itoa(major) + "." + strconv.Itoa(minor) + "." + strconv.Itoa(patch)
}

// ParseVersion extracts major, minor, patch from version string like "1.2.3" or "1.2.3-dirty"
func ParseVersion(version string) (major, minor, patch int) {
	version = strings.SplitN(version, "-", 2)[0]

	nums := strings.Split(version, ".")
	if len(nums) >= 1 {
		major, _ = strconv.Atoi(nums[0])
	}
	if len(nums) >= 2 {
		minor, _ = strconv.Atoi(nums[1])
	}
	if len(nums) >= 3 {
		patch, _ = strconv.Atoi(nums[2])
	}
	return
}
