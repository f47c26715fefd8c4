// Package discovery implements DNS-SD (mDNS) discovery for adb devices.
//
// This package provides:
//   - Service advertising for the pairing and connect endpoints of a device
//   - Service resolution to find devices on the local network
//   - TXT record encoding/decoding for the adb service attributes
//
// A device advertises up to three services:
//   - _adb._tcp: the classic plaintext adb daemon
//   - _adb-tls-pairing._tcp: the wireless-pairing endpoint
//   - _adb-tls-connect._tcp: the TLS adb daemon
//
// The pairing flow browses for _adb-tls-pairing._tcp, pairs over the
// advertised port, and afterwards connects to the device's
// _adb-tls-connect._tcp service.
package discovery

// ServiceType identifies the type of DNS-SD service.
type ServiceType int

// ServiceType constants.
const (
	// ServiceTypeUnknown represents an unknown or invalid service type.
	ServiceTypeUnknown ServiceType = iota

	// ServiceTypeADB is the classic plaintext adb daemon.
	// Service type: _adb._tcp
	ServiceTypeADB

	// ServiceTypePairing is the wireless-pairing endpoint, advertised while
	// the device shows a pairing code or QR code.
	// Service type: _adb-tls-pairing._tcp
	ServiceTypePairing

	// ServiceTypeConnect is the TLS adb daemon paired clients connect to.
	// Service type: _adb-tls-connect._tcp
	ServiceTypeConnect
)

// DNS-SD service type strings.
const (
	// ServiceADB is the DNS-SD service type for the plaintext daemon.
	ServiceADB = "_adb._tcp"

	// ServicePairing is the DNS-SD service type for the pairing endpoint.
	ServicePairing = "_adb-tls-pairing._tcp"

	// ServiceConnect is the DNS-SD service type for the TLS daemon.
	ServiceConnect = "_adb-tls-connect._tcp"

	// DefaultDomain is the default mDNS domain.
	DefaultDomain = "local."
)

// String returns a human-readable string for the service type.
func (s ServiceType) String() string {
	switch s {
	case ServiceTypeADB:
		return "ADB"
	case ServiceTypePairing:
		return "Pairing"
	case ServiceTypeConnect:
		return "Connect"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the service type is valid.
func (s ServiceType) IsValid() bool {
	return s == ServiceTypeADB ||
		s == ServiceTypePairing ||
		s == ServiceTypeConnect
}

// ServiceString returns the DNS-SD service type string.
func (s ServiceType) ServiceString() string {
	switch s {
	case ServiceTypeADB:
		return ServiceADB
	case ServiceTypePairing:
		return ServicePairing
	case ServiceTypeConnect:
		return ServiceConnect
	default:
		return ""
	}
}
