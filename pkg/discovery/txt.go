package discovery

import (
	"fmt"
	"strings"
)

// TXTKeyName is the device name key.
const TXTKeyName = "name"

// MaxDeviceNameLength is the maximum length of the device name in bytes.
// Instance and TXT values share the DNS label budget.
const MaxDeviceNameLength = 63

// PairingTXT holds the TXT records advertised alongside the pairing and
// connect services.
type PairingTXT struct {
	// Name is the human-readable device name (optional, max 63 bytes).
	Name string
}

// Encode converts the TXT record to DNS-SD format strings.
func (p *PairingTXT) Encode() []string {
	var txt []string

	if p.Name != "" {
		name := p.Name
		if len(name) > MaxDeviceNameLength {
			name = name[:MaxDeviceNameLength]
		}
		txt = append(txt, fmt.Sprintf("%s=%s", TXTKeyName, name))
	}

	return txt
}

// Validate checks that the TXT record values are within limits.
func (p *PairingTXT) Validate() error {
	if len(p.Name) > MaxDeviceNameLength {
		return ErrInvalidDeviceName
	}
	return nil
}

// ParsePairingTXT parses raw TXT records into a PairingTXT.
func ParsePairingTXT(records []string) (*PairingTXT, error) {
	m := ParseTXT(records)
	txt := &PairingTXT{}

	if v, ok := m[TXTKeyName]; ok {
		if len(v) > MaxDeviceNameLength {
			return nil, ErrInvalidDeviceName
		}
		txt.Name = v
	}

	return txt, nil
}

// ParseTXT parses raw TXT record strings into a map. Records without a key
// are skipped.
func ParseTXT(records []string) map[string]string {
	result := make(map[string]string)
	for _, record := range records {
		if idx := strings.IndexByte(record, '='); idx > 0 {
			key := record[:idx]
			value := record[idx+1:]
			result[key] = value
		}
	}
	return result
}
