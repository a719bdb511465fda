//go:build silk_noipv6

package silk

const enableIPv6 = false
