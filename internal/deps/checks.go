package deps

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"lithic/internal/config"
)

// DirectoryResult reports whether a working directory is usable.
type DirectoryResult struct {
	Name   string
	Path   string
	Passed bool
	Detail string
}

// Requirements lists the external binaries for the given config.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for video transcoding and frame extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
	}
}

// CheckSystem evaluates all binary dependencies for the given config.
func CheckSystem(cfg *config.Config) []Status {
	return CheckBinaries(Requirements(cfg))
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable/traversable.
func CheckDirectoryAccess(name, path string) DirectoryResult {
	result := DirectoryResult{Name: name, Path: path}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Detail = "does not exist"
			return result
		}
		result.Detail = fmt.Sprintf("stat: %v", err)
		return result
	}
	if !info.IsDir() {
		result.Detail = "is not a directory"
		return result
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		result.Detail = fmt.Sprintf("insufficient permissions: %v", err)
		return result
	}
	result.Passed = true
	result.Detail = "read/write ok"
	return result
}

// CheckDirectories evaluates the configured working directories.
func CheckDirectories(cfg *config.Config) []DirectoryResult {
	return []DirectoryResult{
		CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir),
		CheckDirectoryAccess("Store directory", cfg.Paths.StoreDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
}
