package types

import (
	"encoding/json"
	"testing"
)

func TestTypeInfoWire(t *testing.T) {
	// Module and struct names travel hex-encoded: "book" and "FillEvent".
	raw := `{"account_address":"0x42","module_name":"0x626f6f6b","struct_name":"0x46696c6c4576656e74"}`
	var ti TypeInfo
	if err := json.Unmarshal([]byte(raw), &ti); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ti.ModuleName != "book" || ti.StructName != "FillEvent" {
		t.Fatalf("decoded names: %q / %q", ti.ModuleName, ti.StructName)
	}
	if got := ti.String(); got != "0x42::book::FillEvent" {
		t.Errorf("String: got %s", got)
	}

	out, err := json.Marshal(ti)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back TypeInfo
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if back != ti {
		t.Errorf("round trip: got %+v, want %+v", back, ti)
	}
}

func TestTypeInfoWireBare(t *testing.T) {
	// Some node builds omit the 0x prefix on the hex names.
	raw := `{"account_address":"0x1","module_name":"636f696e","struct_name":"436f696e"}`
	var ti TypeInfo
	if err := json.Unmarshal([]byte(raw), &ti); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ti.ModuleName != "coin" || ti.StructName != "Coin" {
		t.Errorf("decoded names: %q / %q", ti.ModuleName, ti.StructName)
	}
}

func TestParseTypeInfo(t *testing.T) {
	ti, err := ParseTypeInfo("0x42::book::PlaceOrderEvent")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ti.AccountAddress != MustParseAddress("0x42") || ti.ModuleName != "book" || ti.StructName != "PlaceOrderEvent" {
		t.Errorf("parsed: %+v", ti)
	}

	for _, bad := range []string{"", "book::PlaceOrderEvent", "nothex::book::E"} {
		if _, err := ParseTypeInfo(bad); err == nil {
			t.Errorf("ParseTypeInfo(%q): want error", bad)
		}
	}
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		structName string
		data       string
		wantKind   EventKind
	}{
		{
			structName: "PlaceOrderEvent",
			data:       `{"book_id":{"creation_num":"3","addr":"0x42"},"order_id":{"creation_num":"10","addr":"0x42"},"side":0,"price":"100","size":"10","time_in_force":0,"post_only":false,"time":"1700000000"}`,
			wantKind:   KindPlaceOrder,
		},
		{
			structName: "AmendOrderEvent",
			data:       `{"book_id":{"creation_num":"3","addr":"0x42"},"order_id":{"creation_num":"10","addr":"0x42"},"amend_id":{"creation_num":"11","addr":"0x42"},"side":"0","price":"120","size":"8","time":"1700000001"}`,
			wantKind:   KindAmendOrder,
		},
		{
			structName: "CancelOrderEvent",
			data:       `{"book_id":{"creation_num":"3","addr":"0x42"},"order_id":{"creation_num":"10","addr":"0x42"},"cancel_id":{"creation_num":"12","addr":"0x42"},"side":0,"reason":0,"time":"1700000002"}`,
			wantKind:   KindCancelOrder,
		},
		{
			structName: "FillEvent",
			data:       `{"book_id":{"creation_num":"3","addr":"0x42"},"order_id":{"creation_num":"10","addr":"0x42"},"side":0,"price":"100","fill_size":"6","fee":"1","fee_rate":"10","time":"1700000003","remaining_size":"4","is_maker":true}`,
			wantKind:   KindFill,
		},
		{
			structName: "CreateOrderBookEvent",
			data:       `{"book_id":{"creation_num":"3","addr":"0x42"},"creator":"0x42","base":{"account_address":"0x1","module_name":"0x74657374","struct_name":"0x425443"},"quote":{"account_address":"0x1","module_name":"0x74657374","struct_name":"0x555344"},"price_decimals":2,"size_decimals":3,"min_size_amount":"10","base_decimals":8,"quote_decimals":6,"time":"1700000004"}`,
			wantKind:   KindCreateOrderBook,
		},
	}
	for _, tt := range tests {
		t.Run(tt.structName, func(t *testing.T) {
			ev, err := DecodeEvent(tt.structName, json.RawMessage(tt.data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if ev.Kind() != tt.wantKind {
				t.Errorf("kind: got %s, want %s", ev.Kind(), tt.wantKind)
			}
		})
	}

	t.Run("fill fields", func(t *testing.T) {
		ev, err := DecodeEvent("FillEvent", json.RawMessage(tests[3].data))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		fill := ev.(FillEvent)
		if uint64(fill.FillSize) != 6 || uint64(fill.RemainingSize) != 4 || !fill.IsMaker {
			t.Errorf("fill: %+v", fill)
		}
		if fill.OrderId.String() != "0x42:10" {
			t.Errorf("order id: %s", fill.OrderId)
		}
	})

	t.Run("unknown struct", func(t *testing.T) {
		if _, err := DecodeEvent("MintEvent", json.RawMessage(`{}`)); err == nil {
			t.Fatal("want error for unknown struct name")
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		if _, err := DecodeEvent("PlaceOrderEvent", json.RawMessage(`{"price":100}`)); err == nil {
			t.Fatal("want error for malformed payload")
		}
	})
}
