package events

import "testing"

func TestEncodeWrapsRawData(t *testing.T) {
	raw, err := Encode("scores", []byte(`{"a":1,"b":2}`))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(raw) != `{"event":"scores","data":{"a":1,"b":2}}` {
		t.Fatalf("unexpected frame: %s", raw)
	}
}

func TestEncodeRejectsInvalidData(t *testing.T) {
	if _, err := Encode("scores", []byte(`{"a":`)); err == nil {
		t.Fatal("expected invalid json to be rejected")
	}
	if _, err := Encode("", nil); err == nil {
		t.Fatal("expected empty event to be rejected")
	}
}

func TestDecodeSubscribeFrame(t *testing.T) {
	frame, err := Decode([]byte(`{"event":"subscribe","data":{"channel":"scores"}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if frame.Event != EventSubscribe || string(frame.Data) != `{"channel":"scores"}` {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if _, err := Decode([]byte(`{"data":1}`)); err == nil {
		t.Fatal("expected missing event to fail")
	}
}
