package envelope

import (
	"errors"
	"testing"
)

func TestDecode_JSONFormat(t *testing.T) {
	payload := []byte(`{"result":{"success":"[{\"DateTime\":\"Tuesday\"}]","error":"[]","warning":"[]","verbose":"[]","debug":"[]","info":"[]","format":"json"}}`)
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	arr, ok := got.Success.([]any)
	if !ok {
		t.Fatalf("expected []any success, got %T", got.Success)
	}
	if len(arr) != 1 {
		t.Fatalf("expected 1 success item, got %d", len(arr))
	}
	obj, ok := arr[0].(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", arr[0])
	}
	if obj["DateTime"] != "Tuesday" {
		t.Errorf("DateTime = %v", obj["DateTime"])
	}
}

func TestDecode_StringFormat(t *testing.T) {
	payload := []byte(`{"result":{"success":"[\"Testing Write-Output\\r\\n\"]","error":"[]","warning":"[]","verbose":"[]","debug":"[]","info":"[]","format":"string"}}`)
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	arr, ok := got.Success.([]string)
	if !ok {
		t.Fatalf("expected []string success, got %T", got.Success)
	}
	if len(arr) != 1 {
		t.Fatalf("expected 1 success item, got %d", len(arr))
	}
}

func TestDecode_NoneFormat(t *testing.T) {
	payload := []byte(`{"result":{"success":[1,2,3],"error":"[]","warning":"[]","verbose":"[]","debug":"[]","info":"[]","format":null}}`)
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	arr, ok := got.Success.([]any)
	if !ok {
		t.Fatalf("expected []any success, got %T", got.Success)
	}
	if len(arr) != 3 {
		t.Fatalf("expected 3 success items, got %d", len(arr))
	}
}

func TestDecode_ErrorStream(t *testing.T) {
	payload := []byte(`{"result":{"success":"[]","error":"[\"Testing Write-Error\\r\\n\"]","warning":"[]","verbose":"[]","debug":"[]","info":"[]","format":"json"}}`)
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(got.Error) != 1 {
		t.Fatalf("expected 1 error item, got %d", len(got.Error))
	}
	arr, _ := got.Success.([]any)
	if len(arr) != 0 {
		t.Fatalf("expected empty success, got %v", arr)
	}
}

func TestDecode_EmptyFragmentAllStreamsEmpty(t *testing.T) {
	payload := []byte(`{"result":{"success":"[]","error":"[]","warning":"[]","verbose":"[]","debug":"[]","info":"[]","format":"json"}}`)
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected Empty() true, got %+v", got)
	}
}

func TestDecode_VerboseMultilineSplitsIntoItems(t *testing.T) {
	payload := []byte(`{"result":{"success":"[]","error":"[]","warning":"[]","verbose":"[\"line one\",\"line two\"]","debug":"[]","info":"[]","format":"json"}}`)
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(got.Verbose) != 2 {
		t.Fatalf("expected 2 verbose lines, got %d", len(got.Verbose))
	}
}

func TestDecode_MalformedJSONReturnsErrDecode(t *testing.T) {
	_, err := Decode([]byte(`not json at all`))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_MissingResultObjectReturnsErrDecode(t *testing.T) {
	_, err := Decode([]byte(`{"success":"[]"}`))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_MalformedStreamFieldReturnsErrDecode(t *testing.T) {
	payload := []byte(`{"result":{"success":"[]","error":"not an array","warning":"[]","verbose":"[]","debug":"[]","info":"[]","format":"json"}}`)
	_, err := Decode(payload)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}
