//go:build !silk_noipv6

package silk

// enableIPv6 mirrors the historical build-time IPv6 switch; build with
// the silk_noipv6 tag to refuse IPv6 records and buffers.
const enableIPv6 = true
