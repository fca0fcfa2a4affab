package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type DeltaKind int

const (
	DeltaUnchanged DeltaKind = iota
	DeltaAdded
	DeltaRemoved
	DeltaChanged
)

func (k DeltaKind) String() string {
	switch k {
	case DeltaUnchanged:
		return "unchanged"
	case DeltaAdded:
		return "added"
	case DeltaRemoved:
		return "removed"
	case DeltaChanged:
		return "changed"
	}
	return fmt.Sprintf("delta(%d)", int(k))
}

// Delta is one value's change within a single trace. From is set for
// removed and changed deltas, To for added and changed deltas.
type Delta struct {
	Kind DeltaKind
	From hexutil.Bytes
	To   hexutil.Bytes
}

func Unchanged() Delta {
	return Delta{Kind: DeltaUnchanged}
}

func Added(value []byte) Delta {
	return Delta{Kind: DeltaAdded, To: value}
}

func Removed(value []byte) Delta {
	return Delta{Kind: DeltaRemoved, From: value}
}

func Changed(from, to []byte) Delta {
	return Delta{Kind: DeltaChanged, From: from, To: to}
}

type changedDelta struct {
	From hexutil.Bytes `json:"from"`
	To   hexutil.Bytes `json:"to"`
}

// UnmarshalJSON decodes the parity stateDiff form: "=", {"+": v}, {"-": v}
// or {"*": {"from": a, "to": b}}.
func (d *Delta) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`"="`)) || bytes.Equal(data, []byte("null")) {
		*d = Unchanged()
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal delta %s is err: %w", string(data), err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("delta %s must have exactly one variant", string(data))
	}
	for key, value := range raw {
		switch key {
		case "+":
			var to hexutil.Bytes
			if err := json.Unmarshal(value, &to); err != nil {
				return fmt.Errorf("unmarshal added delta is err: %w", err)
			}
			*d = Added(to)
		case "-":
			var from hexutil.Bytes
			if err := json.Unmarshal(value, &from); err != nil {
				return fmt.Errorf("unmarshal removed delta is err: %w", err)
			}
			*d = Removed(from)
		case "*":
			var changed changedDelta
			if err := json.Unmarshal(value, &changed); err != nil {
				return fmt.Errorf("unmarshal changed delta is err: %w", err)
			}
			*d = Changed(changed.From, changed.To)
		default:
			return fmt.Errorf("unknown delta variant %q", key)
		}
	}
	return nil
}

func (d Delta) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DeltaAdded:
		return json.Marshal(map[string]hexutil.Bytes{"+": d.To})
	case DeltaRemoved:
		return json.Marshal(map[string]hexutil.Bytes{"-": d.From})
	case DeltaChanged:
		return json.Marshal(map[string]changedDelta{"*": {From: d.From, To: d.To}})
	}
	return []byte(`"="`), nil
}
