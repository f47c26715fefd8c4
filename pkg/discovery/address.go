package discovery

import (
	"net"
	"sort"
)

// SortIPsByPreference sorts IP addresses by how likely a client on the same
// network is to reach them. Priority order (highest to lowest):
//  1. IPv4 (the usual wireless-debugging transport on a LAN)
//  2. Global unicast IPv6
//  3. Unique local IPv6 (fc00::/7)
//  4. Link-local IPv6 (needs a zone to dial)
func SortIPsByPreference(ips []net.IP) []net.IP {
	if len(ips) <= 1 {
		return ips
	}

	// Make a copy to avoid modifying the original slice
	sorted := make([]net.IP, len(ips))
	copy(sorted, ips)

	sort.SliceStable(sorted, func(i, j int) bool {
		return ipPriority(sorted[i]) < ipPriority(sorted[j])
	})

	return sorted
}

// ipPriority returns the priority of an IP address (lower is better).
func ipPriority(ip net.IP) int {
	// Normalize to 16-byte representation
	normalized := ip.To16()
	if normalized == nil {
		return 99 // Invalid
	}

	if v4 := normalized.To4(); v4 != nil {
		if normalized.IsLoopback() {
			return 80
		}
		return 0
	}

	// IPv6 addresses
	switch {
	case isUniqueLocal(normalized):
		return 2 // ULA - organization-local
	case normalized.IsGlobalUnicast():
		return 1 // globally routable
	case normalized.IsLinkLocalUnicast():
		return 3 // same link only, usually needs a zone
	case normalized.IsLoopback():
		return 80
	case normalized.IsMulticast():
		return 90 // not for unicast communication
	default:
		return 10
	}
}

// isUniqueLocal returns true if the IP is an IPv6 Unique Local Address (ULA).
// ULA range: fc00::/7 (fc00:: to fdff::)
func isUniqueLocal(ip net.IP) bool {
	ip = ip.To16()
	if ip == nil {
		return false
	}

	// Check if first byte is in fc00::/7 range (0xfc or 0xfd)
	return ip[0] == 0xfc || ip[0] == 0xfd
}

// FilterIPv6 returns only IPv6 addresses from the slice.
func FilterIPv6(ips []net.IP) []net.IP {
	var result []net.IP
	for _, ip := range ips {
		if ip.To4() == nil && ip.To16() != nil {
			result = append(result, ip)
		}
	}
	return result
}

// FilterIPv4 returns only IPv4 addresses from the slice.
func FilterIPv4(ips []net.IP) []net.IP {
	var result []net.IP
	for _, ip := range ips {
		if ip.To4() != nil {
			result = append(result, ip)
		}
	}
	return result
}

// GetLocalAddresses returns all non-loopback IP addresses on the host,
// sorted by preference. A pairing server logs these so the user knows which
// address the device is reachable at.
func GetLocalAddresses() ([]net.IP, error) {
	var addresses []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		// Skip down or loopback interfaces
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && !ip.IsLoopback() {
				addresses = append(addresses, ip)
			}
		}
	}

	return SortIPsByPreference(addresses), nil
}
