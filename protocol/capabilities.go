package protocol

// CapabilityFlag names a single bit of the 32-bit capability bitset
// exchanged during the handshake (spec.md §3 "Capabilities"). Only the
// flags this client needs to read or set are named; unrecognized bits
// round-trip transparently since the type is just a uint32.
type CapabilityFlag uint32

const (
	ClientLongPassword               CapabilityFlag = 1 << 0
	ClientFoundRows                  CapabilityFlag = 1 << 1
	ClientLongFlag                   CapabilityFlag = 1 << 2
	ClientConnectWithDB              CapabilityFlag = 1 << 3
	ClientNoSchema                   CapabilityFlag = 1 << 4
	ClientCompress                   CapabilityFlag = 1 << 5
	ClientODBC                       CapabilityFlag = 1 << 6
	ClientLocalFiles                 CapabilityFlag = 1 << 7
	ClientIgnoreSpace                CapabilityFlag = 1 << 8
	ClientProtocol41                 CapabilityFlag = 1 << 9
	ClientInteractive                CapabilityFlag = 1 << 10
	ClientSSL                        CapabilityFlag = 1 << 11
	ClientIgnoreSIGPIPE              CapabilityFlag = 1 << 12
	ClientTransactions               CapabilityFlag = 1 << 13
	ClientReserved                   CapabilityFlag = 1 << 14
	ClientSecureConnection           CapabilityFlag = 1 << 15
	ClientMultiStatements            CapabilityFlag = 1 << 16
	ClientMultiResults               CapabilityFlag = 1 << 17
	ClientPSMultiResults             CapabilityFlag = 1 << 18
	ClientPluginAuth                 CapabilityFlag = 1 << 19
	ClientConnectAttrs               CapabilityFlag = 1 << 20
	ClientPluginAuthLenEncClientData CapabilityFlag = 1 << 21
	ClientCanHandleExpiredPasswords  CapabilityFlag = 1 << 22
	ClientSessionTrack               CapabilityFlag = 1 << 23
	ClientDeprecateEOF               CapabilityFlag = 1 << 24
)

// Has reports whether flag is set in the bitset f.
func (f CapabilityFlag) Has(flag CapabilityFlag) bool {
	return f&flag != 0
}

// defaultClientCapabilities is the capability set this client always
// advertises, per spec.md §4.3: long password hashing, protocol 4.1
// framing, pluggable auth with length-encoded auth response data.
const defaultClientCapabilities = ClientLongPassword |
	ClientProtocol41 |
	ClientSecureConnection |
	ClientPluginAuth |
	ClientPluginAuthLenEncClientData |
	ClientTransactions |
	ClientMultiResults
