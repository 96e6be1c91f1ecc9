// Package sysinfo reports the host's core and thread topology, used to size
// solver batch jobs before submitting them.
package sysinfo

import (
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
)

// CoreInfo describes the cores and threads available on this host.
type CoreInfo struct {
	LogicalCores  int
	PhysicalCores int
	ModelNames    []string
	OMPThreadsEnv string // OMP_NUM_THREADS, empty when unset
}

// Collect gathers core information. Inspection failures degrade to zero
// counts rather than failing the command; the report marks them unknown.
func Collect() CoreInfo {
	info := CoreInfo{
		OMPThreadsEnv: os.Getenv("OMP_NUM_THREADS"),
	}

	if n, err := cpu.Counts(true); err == nil {
		info.LogicalCores = n
	}
	if n, err := cpu.Counts(false); err == nil {
		info.PhysicalCores = n
	}
	if stats, err := cpu.Info(); err == nil {
		seen := make(map[string]bool)
		for _, s := range stats {
			if s.ModelName != "" && !seen[s.ModelName] {
				seen[s.ModelName] = true
				info.ModelNames = append(info.ModelNames, s.ModelName)
			}
		}
	}
	return info
}

// Render formats the report in the banner-framed layout operators expect.
func (info CoreInfo) Render() string {
	var b strings.Builder
	b.WriteString("===== System Core Information =====\n")
	fmt.Fprintf(&b, "Logical cores online: %s\n", countOrUnknown(info.LogicalCores))
	fmt.Fprintf(&b, "Physical cores: %s\n", countOrUnknown(info.PhysicalCores))
	for _, name := range info.ModelNames {
		fmt.Fprintf(&b, "CPU model: %s\n", name)
	}
	if info.OMPThreadsEnv != "" {
		fmt.Fprintf(&b, "OMP_NUM_THREADS environment variable: %s\n", info.OMPThreadsEnv)
	} else {
		b.WriteString("OMP_NUM_THREADS is not set\n")
	}
	b.WriteString("===================================\n")
	return b.String()
}

func countOrUnknown(n int) string {
	if n <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", n)
}
