package pairing

// PeerInfoType labels the contents of a peer-info blob.
type PeerInfoType uint8

const (
	// PeerInfoRSAPublicKey labels an RSA public key in the adb key format.
	PeerInfoRSAPublicKey PeerInfoType = 0

	// PeerInfoDeviceGUID labels a device GUID.
	PeerInfoDeviceGUID PeerInfoType = 1
)

// String returns a human-readable name for the peer info type.
func (t PeerInfoType) String() string {
	switch t {
	case PeerInfoRSAPublicKey:
		return "RSAPublicKey"
	case PeerInfoDeviceGUID:
		return "DeviceGUID"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the peer info type is a defined value.
func (t PeerInfoType) IsValid() bool {
	return t <= PeerInfoDeviceGUID
}

// MaxPeerInfoDataSize is the maximum peer-info data size in bytes.
const MaxPeerInfoDataSize = 8191

// PeerInfo is the identity blob each side sends once the session cipher is
// established. The data is opaque to the pairing layer; the type tells the
// receiver how to interpret it.
type PeerInfo struct {
	Type PeerInfoType
	Data []byte
}

// Encode serializes the peer info: type byte followed by the data. The
// enclosing packet header carries the length.
func (p *PeerInfo) Encode() []byte {
	buf := make([]byte, 1+len(p.Data))
	buf[0] = uint8(p.Type)
	copy(buf[1:], p.Data)
	return buf
}

// DecodePeerInfo deserializes and validates a peer-info blob. The data must
// be non-empty. The returned PeerInfo owns an independent copy of the data.
func DecodePeerInfo(data []byte) (*PeerInfo, error) {
	if len(data) < 2 {
		return nil, ErrPeerInfoTooShort
	}
	if len(data)-1 > MaxPeerInfoDataSize {
		return nil, ErrPeerInfoTooLarge
	}

	infoType := PeerInfoType(data[0])
	if !infoType.IsValid() {
		return nil, ErrInvalidPeerInfoType
	}

	info := &PeerInfo{
		Type: infoType,
		Data: make([]byte, len(data)-1),
	}
	copy(info.Data, data[1:])

	return info, nil
}

// Validate checks the peer info against the size and type constraints
// before sending.
func (p *PeerInfo) Validate() error {
	if !p.Type.IsValid() {
		return ErrInvalidPeerInfoType
	}
	if len(p.Data) == 0 {
		return ErrPeerInfoTooShort
	}
	if len(p.Data) > MaxPeerInfoDataSize {
		return ErrPeerInfoTooLarge
	}
	return nil
}
