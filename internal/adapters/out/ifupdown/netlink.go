package ifupdown

import (
	"errors"
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"
)

// ErrLinkNotFound is returned when the link does not exist.
var ErrLinkNotFound = errors.New("link not found")

// NetlinkInspector reads link state through rtnetlink.
type NetlinkInspector struct{}

func (NetlinkInspector) LinkState(name string) (bool, []netip.Prefix, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return false, nil, ErrLinkNotFound
		}
		return false, nil, err
	}

	up := link.Attrs().Flags&net.FlagUp != 0

	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return up, nil, err
	}

	prefixes := make([]netip.Prefix, 0, len(addrs))
	for _, a := range addrs {
		if a.IPNet == nil {
			continue
		}
		ip, ok := netip.AddrFromSlice(a.IPNet.IP.To4())
		if !ok {
			continue
		}
		ones, _ := a.IPNet.Mask.Size()
		prefixes = append(prefixes, netip.PrefixFrom(ip, ones))
	}
	return up, prefixes, nil
}
