package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// TerminalID reads the machine's physical MAC address and hashes it into a
// stable identifier like "POS-A1B2C3D4". It names this terminal's cart
// session and is written onto every order the terminal finalizes.
func TerminalID() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "POS-UNKNOWN"
	}

	var macAddress string
	for _, i := range interfaces {
		// First active physical network interface wins
		if i.Flags&net.FlagUp != 0 && len(i.HardwareAddr) > 0 {
			macAddress = i.HardwareAddr.String()
			break
		}
	}

	if macAddress == "" {
		return "POS-UNKNOWN"
	}

	hash := sha256.Sum256([]byte(macAddress + "pos-terminal-id"))
	hashString := hex.EncodeToString(hash[:])

	return "POS-" + strings.ToUpper(hashString[:8])
}
