//go:build !unix

package logging

func terminalColumns(uintptr) int { return 0 }
