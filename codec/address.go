package codec

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
)

type AddressKind byte

// Native kinds carry a 32-byte payload; AddressEth is the external-chain
// variant carrying a 20-byte Ethereum-style address.
const (
	AddressEd25519 AddressKind = 0x00
	AddressAlias   AddressKind = 0x08
	AddressNFT     AddressKind = 0x10
	AddressEth     AddressKind = 0x20
)

const (
	AddressNativeLength = 32
	AddressEthLength    = 20
	ChainIDLength       = 32

	addressChecksumLength = 4
	ethZeroString         = "0x0"
)

func (kind AddressKind) String() string {
	switch kind {
	case AddressEd25519:
		return "ed25519"
	case AddressAlias:
		return "alias"
	case AddressNFT:
		return "nft"
	case AddressEth:
		return "eth"
	default:
		return "unknown"
	}
}

func (kind AddressKind) payloadLength() int {
	switch kind {
	case AddressEd25519, AddressAlias, AddressNFT:
		return AddressNativeLength
	case AddressEth:
		return AddressEthLength
	default:
		return -1
	}
}

// Address is a chain-native or external-chain address. The zero value is the
// all-zero Ed25519 address.
type Address struct {
	kind AddressKind
	id   [AddressNativeLength]byte
}

// NewAddress panics unless payload has the length required by kind.
func NewAddress(kind AddressKind, payload []byte) Address {
	n := kind.payloadLength()
	if n < 0 {
		abortf("Address", []byte{byte(kind)}, "invalid Address kind")
	}
	if len(payload) != n {
		abortf("Address", payload, "invalid %s Address payload length %d, expected %d", kind, len(payload), n)
	}
	a := Address{kind: kind}
	copy(a.id[:], payload)
	return a
}

func (a Address) Kind() AddressKind { return a.kind }
func (a Address) IsEth() bool       { return a.kind == AddressEth }

// Payload returns the address bytes without the kind byte.
func (a Address) Payload() []byte {
	n := a.kind.payloadLength()
	if n < 0 {
		n = AddressNativeLength
	}
	return append([]byte(nil), a.id[:n]...)
}

func (a Address) Bytes() []byte  { return TAddress.ToBytes(a) }
func (a Address) String() string { return TAddress.ToString(a) }

func addressFromBytes(buf []byte) Address {
	kind := AddressKind(buf[0])
	n := kind.payloadLength()
	if n < 0 {
		abortf("Address", buf, "invalid Address kind %d", kind)
	}
	if len(buf) != 1+n {
		abortf("Address", buf, "invalid %s Address length %d, expected %d", kind, len(buf), 1+n)
	}
	a := Address{kind: kind}
	copy(a.id[:], buf[1:])
	return a
}

func addressToBytes(a Address) []byte {
	n := a.kind.payloadLength()
	if n < 0 {
		abortf("Address", []byte{byte(a.kind)}, "invalid Address kind")
	}
	buf := make([]byte, 0, 1+n)
	buf = append(buf, byte(a.kind))
	return append(buf, a.id[:n]...)
}

func addressChecksum(data []byte) []byte {
	digest := sha3.Sum256(data)
	return digest[:addressChecksumLength]
}

func addressFromString(s string) Address {
	if strings.HasPrefix(s, "0x") {
		if s == ethZeroString {
			return Address{kind: AddressEth}
		}
		buf, err := hex.DecodeString(s[2:])
		if err != nil {
			abortErr("Address", []byte(s), err, "invalid eth Address string")
		}
		return NewAddress(AddressEth, buf)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		abortErr("Address", []byte(s), err, "invalid Address string")
	}
	if len(raw) <= addressChecksumLength {
		abortf("Address", raw, "Address string too short")
	}
	body, sum := raw[:len(raw)-addressChecksumLength], raw[len(raw)-addressChecksumLength:]
	if !bytes.Equal(addressChecksum(body), sum) {
		abortf("Address", raw, "Address checksum mismatch")
	}
	a := addressFromBytes(body)
	if a.kind == AddressEth {
		abortf("Address", raw, "eth Address must use 0x form")
	}
	return a
}

func addressToString(a Address) string {
	if a.kind == AddressEth {
		payload := a.id[:AddressEthLength]
		if isZero(payload) {
			return ethZeroString
		}
		return "0x" + hex.EncodeToString(payload)
	}
	body := addressToBytes(a)
	return base58.Encode(append(body, addressChecksum(body)...))
}

func isZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// ChainID identifies a chain; it is the payload of the chain's Alias address.
type ChainID [ChainIDLength]byte

func ChainIDFromAddress(a Address) ChainID {
	if a.kind != AddressAlias {
		abortf("ChainID", a.Bytes(), "invalid ChainID address kind %s", a.kind)
	}
	var id ChainID
	copy(id[:], a.id[:])
	return id
}

func (id ChainID) Address() Address {
	return Address{kind: AddressAlias, id: id}
}

func (id ChainID) Bytes() []byte  { return TChainID.ToBytes(id) }
func (id ChainID) String() string { return TChainID.ToString(id) }

type AgentIDKind byte

const (
	AgentIDNil      AgentIDKind = 0
	AgentIDAddress  AgentIDKind = 1
	AgentIDContract AgentIDKind = 2
	AgentIDEthereum AgentIDKind = 3
)

const nilAgentIDString = "-"

// AgentID identifies an entity that can own funds: a plain address, a
// contract on a chain, or an Ethereum account on a chain.
type AgentID struct {
	kind    AgentIDKind
	address Address
	hname   Hname
	eth     Address
}

func NewContractAgentID(chainID ChainID, hname Hname) AgentID {
	return AgentID{kind: AgentIDContract, address: chainID.Address(), hname: hname}
}

func NewEthAgentID(chainID ChainID, eth Address) AgentID {
	if eth.kind != AddressEth {
		abortf("AgentID", eth.Bytes(), "invalid eth AgentID: eth address expected")
	}
	return AgentID{kind: AgentIDEthereum, address: chainID.Address(), eth: eth}
}

// AgentIDFromAddress wraps an address; an Alias address denotes the chain
// itself and becomes a contract agent with a zero hname.
func AgentIDFromAddress(a Address) AgentID {
	switch a.kind {
	case AddressAlias:
		return AgentID{kind: AgentIDContract, address: a}
	case AddressEth:
		abortf("AgentID", a.Bytes(), "invalid eth AgentID: need chain address")
		return AgentID{}
	default:
		return AgentID{kind: AgentIDAddress, address: a}
	}
}

func (a AgentID) Kind() AgentIDKind   { return a.kind }
func (a AgentID) Address() Address    { return a.address }
func (a AgentID) Hname() Hname        { return a.hname }
func (a AgentID) EthAddress() Address { return a.eth }
func (a AgentID) IsNil() bool         { return a.kind == AgentIDNil }
func (a AgentID) Bytes() []byte       { return TAgentID.ToBytes(a) }
func (a AgentID) String() string      { return TAgentID.ToString(a) }

func agentIDFromBytes(buf []byte) AgentID {
	a := AgentID{kind: AgentIDKind(buf[0])}
	buf = buf[1:]
	switch a.kind {
	case AgentIDNil:
		if len(buf) != 0 {
			abortf("AgentID", buf, "invalid AgentID length: nil agentID")
		}
	case AgentIDAddress:
		if len(buf) == 0 {
			abortf("AgentID", buf, "invalid AgentID length: address agentID")
		}
		a.address = addressFromBytes(buf)
		if a.address.kind == AddressEth {
			abortf("AgentID", buf, "invalid AgentID: eth address agentID")
		}
	case AgentIDContract:
		if len(buf) != ChainIDLength+HnameLength {
			abortf("AgentID", buf, "invalid AgentID length: contract agentID")
		}
		a.address = TChainID.FromBytes(buf[:ChainIDLength]).Address()
		a.hname = THname.FromBytes(buf[ChainIDLength:])
	case AgentIDEthereum:
		if len(buf) != ChainIDLength+1+AddressEthLength {
			abortf("AgentID", buf, "invalid AgentID length: eth agentID")
		}
		a.address = TChainID.FromBytes(buf[:ChainIDLength]).Address()
		a.eth = addressFromBytes(buf[ChainIDLength:])
		if a.eth.kind != AddressEth {
			abortf("AgentID", buf, "invalid AgentID: eth address expected")
		}
	default:
		abortf("AgentID", buf, "invalid AgentID kind %d", a.kind)
	}
	return a
}

func agentIDToBytes(a AgentID) []byte {
	buf := []byte{byte(a.kind)}
	switch a.kind {
	case AgentIDNil:
		return buf
	case AgentIDAddress:
		return append(buf, addressToBytes(a.address)...)
	case AgentIDContract:
		buf = append(buf, a.address.id[:]...)
		return append(buf, THname.ToBytes(a.hname)...)
	case AgentIDEthereum:
		buf = append(buf, a.address.id[:]...)
		return append(buf, addressToBytes(a.eth)...)
	default:
		abortf("AgentID", buf, "invalid AgentID kind %d", a.kind)
		return nil
	}
}

func agentIDFromString(s string) AgentID {
	if s == nilAgentIDString {
		return AgentID{}
	}
	parts := strings.Split(s, "@")
	switch len(parts) {
	case 1:
		return AgentIDFromAddress(addressFromString(parts[0]))
	case 2:
		chainID := ChainIDFromAddress(addressFromString(parts[1]))
		if strings.HasPrefix(parts[0], "0x") {
			return NewEthAgentID(chainID, addressFromString(parts[0]))
		}
		return NewContractAgentID(chainID, THname.FromString(parts[0]))
	default:
		abortf("AgentID", []byte(s), "invalid AgentID string")
		return AgentID{}
	}
}

func agentIDToString(a AgentID) string {
	switch a.kind {
	case AgentIDNil:
		return nilAgentIDString
	case AgentIDAddress:
		return addressToString(a.address)
	case AgentIDContract:
		return THname.ToString(a.hname) + "@" + addressToString(a.address)
	case AgentIDEthereum:
		return addressToString(a.eth) + "@" + addressToString(a.address)
	default:
		abortf("AgentID", []byte{byte(a.kind)}, "invalid AgentID kind")
		return ""
	}
}

var (
	TAddress = register(&scalar[Address]{
		tag:        TagAddress,
		name:       "Address",
		fromBytes:  addressFromBytes,
		toBytes:    addressToBytes,
		fromString: addressFromString,
		toString:   addressToString,
	})

	// TChainID stores the raw 32 bytes but prints as the chain's Alias address.
	TChainID = register(&scalar[ChainID]{
		tag:  TagChainID,
		name: "ChainID",
		size: ChainIDLength,
		fromBytes: func(buf []byte) (id ChainID) {
			copy(id[:], buf)
			return
		},
		toBytes: func(id ChainID) []byte {
			return append([]byte(nil), id[:]...)
		},
		fromString: func(s string) ChainID {
			return ChainIDFromAddress(addressFromString(s))
		},
		toString: func(id ChainID) string {
			return addressToString(id.Address())
		},
	})

	TAgentID = register(&scalar[AgentID]{
		tag:        TagAgentID,
		name:       "AgentID",
		fromBytes:  agentIDFromBytes,
		toBytes:    agentIDToBytes,
		fromString: agentIDFromString,
		toString:   agentIDToString,
	})
)
