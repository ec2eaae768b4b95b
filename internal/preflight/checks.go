// Package preflight verifies the host is ready before workers start:
// external tools on PATH, writable directories, and enough free disk
// space for transcoded output.
package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sys/unix"

	"reel/internal/config"
	"reel/internal/deps"
)

// Result is one preflight check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the floor below which conversion output is likely to
// fail mid-write.
const minFreeBytes = 1 << 30 // 1 GiB

// CheckDirectoryAccess verifies that the directory exists and is
// readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has room for
// output.
func CheckFreeSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free on %s", humanize.Bytes(free), path)
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " (below 1 GiB minimum)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// Evaluate runs every preflight check for the configuration. The
// checks are local stat and PATH lookups, so there is nothing to
// cancel.
func Evaluate(cfg *config.Config) []Result {
	results := make([]Result, 0, 8)
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		}
		if !status.Available && status.Optional {
			result.Passed = true
			result.Detail = status.Detail + " (optional)"
		}
		results = append(results, result)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		results = append(results, Result{Name: "Directories", Detail: err.Error()})
	} else {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
		// An empty output dir means outputs land next to sources, so
		// there is no fixed directory to verify; gauge free space on
		// the log volume instead.
		spaceDir := cfg.Paths.OutputDir
		if spaceDir != "" {
			results = append(results, CheckDirectoryAccess("Output directory", spaceDir))
		} else {
			spaceDir = cfg.Paths.LogDir
		}
		results = append(results, CheckFreeSpace("Free space", spaceDir))
	}
	return results
}

// Ready reports whether every check passed.
func Ready(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// HostSummary describes the machine for status output. Failures degrade
// to empty fields rather than errors; this is display-only.
type HostSummary struct {
	Hostname    string
	Platform    string
	Kernel      string
	UptimeHours float64
	MemoryTotal string
	MemoryUsed  string
}

// Host collects a best-effort host description.
func Host(ctx context.Context) HostSummary {
	var summary HostSummary
	if info, err := host.InfoWithContext(ctx); err == nil {
		summary.Hostname = info.Hostname
		summary.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		summary.Kernel = info.KernelVersion
		summary.UptimeHours = float64(info.Uptime) / 3600
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		summary.MemoryTotal = humanize.Bytes(vm.Total)
		summary.MemoryUsed = humanize.Bytes(vm.Used)
	}
	return summary
}
