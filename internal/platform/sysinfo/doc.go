// Package sysinfo samples host resource usage for the /api/metrics snapshot.
// CPU, memory, network and uptime come from procfs; disk usage from statfs.
package sysinfo
