// federails
// Copyright (C) federails authors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package httpclient

import (
	"fmt"
	"net/netip"
	"syscall"
)

// sanitizer is set as a net.Dialer{}.Control func to inspect the
// resolved address of every outbound dial the Fetcher (C3) or
// Outbound Queue (C7) makes, rejecting loopback / link-local /
// private ranges unless explicitly allow-listed. This stops a
// malicious or compromised remote instance from pointing an
// activity's id/inbox at an internal address.
type sanitizer struct {
	allow []netip.Prefix
	block []netip.Prefix
}

// Sanitize implements net.Dialer{}.Control.
func (s *sanitizer) Sanitize(network, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("httpclient: invalid dial address %q: %w", address, err)
	}
	addr := addrPort.Addr()

	for _, allowed := range s.allow {
		if allowed.Contains(addr) {
			return nil
		}
	}

	if isReservedAddr(addr) {
		return ErrReservedAddr
	}

	for _, blocked := range s.block {
		if blocked.Contains(addr) {
			return ErrReservedAddr
		}
	}

	return nil
}

// isReservedAddr reports whether addr falls within a well-known
// reserved / non-routable range that should never be dialed as part
// of outbound federation traffic.
func isReservedAddr(addr netip.Addr) bool {
	return addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsPrivate() ||
		addr.IsUnspecified() ||
		addr.IsMulticast()
}
