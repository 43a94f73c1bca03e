package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/spf13/cobra"
)

// parseAccount accepts a 20-byte hex account id (optionally 0x-prefixed)
// or a name, which is hashed into a deterministic account.
func parseAccount(s string) (ledger.AccountID, error) {
	if s == "" {
		return ledger.AccountID{}, fmt.Errorf("account is required")
	}
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) == 2*len(ledger.AccountID{}) {
		if _, err := hex.DecodeString(raw); err == nil {
			return ledger.ParseAccountID(raw)
		}
	}
	return ledger.AccountFromName(s), nil
}

func parseUint(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}

func parsePoolID(s string) (amm.PoolID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid pool id %q: %w", s, err)
	}
	return amm.PoolID(v), nil
}

func parseAssets(args []string) ([]ledger.AssetID, error) {
	out := make([]ledger.AssetID, len(args))
	for i, a := range args {
		v, err := parseUint("asset", a)
		if err != nil {
			return nil, err
		}
		out[i] = ledger.AssetID(v)
	}
	return out, nil
}

func parseUints(name string, list []string) ([]uint64, error) {
	out := make([]uint64, len(list))
	for i, s := range list {
		v, err := parseUint(name, s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseTokenIDs(list []string) ([]ledger.TokenID, error) {
	vs, err := parseUints("token id", list)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.TokenID, len(vs))
	for i, v := range vs {
		out[i] = ledger.TokenID(v)
	}
	return out, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func assetID(v uint64) ledger.AssetID {
	return ledger.AssetID(v)
}
