package pipeline

import "testing"

func TestDecodeRawEventsArray(t *testing.T) {
	data := []byte(`[{"eventType":"CREDIT"},{"eventType":"TAX_REFUND"}]`)

	raws, err := DecodeRawEvents(data)
	if err != nil {
		t.Fatalf("DecodeRawEvents: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("len = %d, want 2", len(raws))
	}
	if raws[1]["eventType"] != "TAX_REFUND" {
		t.Errorf("raws[1].eventType = %v", raws[1]["eventType"])
	}
}

func TestDecodeRawEventsItemsWrapper(t *testing.T) {
	data := []byte(`{"items":[{"eventType":"CREDIT"}],"cursors":{"after":"abc"}}`)

	raws, err := DecodeRawEvents(data)
	if err != nil {
		t.Fatalf("DecodeRawEvents: %v", err)
	}
	if len(raws) != 1 || raws[0]["eventType"] != "CREDIT" {
		t.Errorf("raws = %v", raws)
	}
}

func TestDecodeRawEventsEmptyArray(t *testing.T) {
	raws, err := DecodeRawEvents([]byte(`[]`))
	if err != nil {
		t.Fatalf("DecodeRawEvents: %v", err)
	}
	if len(raws) != 0 {
		t.Errorf("len = %d, want 0", len(raws))
	}
}

func TestDecodeRawEventsInvalid(t *testing.T) {
	for _, data := range []string{`not json`, `{"cursors":{}}`, `42`} {
		if _, err := DecodeRawEvents([]byte(data)); err == nil {
			t.Errorf("DecodeRawEvents(%q) = nil error, want failure", data)
		}
	}
}
