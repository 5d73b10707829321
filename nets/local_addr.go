package nets

import (
	"net"
	"net/netip"
	"strings"
)

// IsLocalAddr reports whether addr is on this host or a private network.
// Peers on the robot network are dialed directly, never through a proxy.
type IsLocalAddr func(addr string) (bool, error)

func isLocalIP(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

func (Module) IsLocalAddr() IsLocalAddr {
	return func(addr string) (bool, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		host = strings.Trim(host, "[]")
		if strings.EqualFold(host, "localhost") {
			return true, nil
		}
		if ip, err := netip.ParseAddr(host); err == nil {
			return isLocalIP(ip), nil
		}

		ips, err := net.LookupIP(host)
		if err != nil {
			// unresolvable names go through the proxy
			return false, nil
		}
		for _, ip := range ips {
			if addr, ok := netip.AddrFromSlice(ip); ok && isLocalIP(addr) {
				return true, nil
			}
		}
		return false, nil
	}
}
