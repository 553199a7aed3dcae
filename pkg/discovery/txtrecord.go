package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the TXT records for a server.
func EncodeTXT(info *ServerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	version := info.Version
	if version == "" {
		version = DefaultVersion()
	}
	txt[TXTKeyVersion] = version

	if info.AppID != "" {
		txt[TXTKeyAppID] = info.AppID
	}
	if info.WebSocketPort != 0 {
		txt[TXTKeyWSPort] = strconv.FormatUint(uint64(info.WebSocketPort), 10)
		if info.WebSocketPath != "" && info.WebSocketPath != "/" {
			txt[TXTKeyWSPath] = info.WebSocketPath
		}
	}
	if info.TLS {
		txt[TXTKeyTLS] = "1"
	}
	return txt
}

// DecodeTXT parses the TXT records of a server. Name and Port are not part
// of the TXT data and stay zero.
func DecodeTXT(txt TXTRecordMap) (*ServerInfo, error) {
	info := &ServerInfo{}

	v, ok := txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	if !validVersion(v) {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyVersion, v)
	}
	info.Version = v
	info.AppID = txt[TXTKeyAppID]

	if ws, ok := txt[TXTKeyWSPort]; ok {
		port, err := strconv.ParseUint(ws, 10, 16)
		if err != nil || port == 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidPort, TXTKeyWSPort, ws)
		}
		info.WebSocketPort = uint16(port)
		info.WebSocketPath = txt[TXTKeyWSPath]
		if info.WebSocketPath == "" {
			info.WebSocketPath = "/"
		}
	}

	switch txt[TXTKeyTLS] {
	case "", "0":
	case "1":
		info.TLS = true
	default:
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyTLS, txt[TXTKeyTLS])
	}
	return info, nil
}

func validVersion(v string) bool {
	major, minor, ok := strings.Cut(v, ".")
	if !ok {
		return false
	}
	_, err1 := strconv.ParseUint(major, 10, 8)
	_, err2 := strconv.ParseUint(minor, 10, 8)
	return err1 == nil && err2 == nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, _ := strings.Cut(s, "=")
		if k != "" {
			txt[k] = v
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
