package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxRequestBody caps the request body size for both protobuf and JSON
// payloads. Check-in bodies are a few dozen bytes.
const maxRequestBody = 4096

const protobufType = "application/x-protobuf"

// isProtobuf returns true if the request's Content-Type indicates a
// protobuf payload.
func isProtobuf(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == protobufType || ct == "application/protobuf"
}

// wantsProtobuf reports whether the client asked for a protobuf response.
func wantsProtobuf(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := mime.ParseMediaType(strings.TrimSpace(part))
		if mt == protobufType || mt == "application/protobuf" {
			return true
		}
	}
	return false
}

// decodeRequest reads a JSON body, or a protobuf Struct body carrying the
// same fields, into dst. Unknown fields are rejected either way.
func decodeRequest(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxRequestBody)

	if isProtobuf(r) {
		var st structpb.Struct
		if err := readProto(body, &st); err != nil {
			return err
		}
		raw, err := json.Marshal(st.AsMap())
		if err != nil {
			return errors.Wrap(err, "re-encode protobuf body")
		}
		return decodeJSON(bytes.NewReader(raw), dst)
	}
	return decodeJSON(body, dst)
}

func decodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// readProto reads the body and unmarshals it into msg.
func readProto(r io.Reader, msg proto.Message) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return proto.Unmarshal(body, msg)
}

// respond writes v as JSON, or as a protobuf Struct when the client asked
// for one.
func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if !wantsProtobuf(r) {
		writeJSON(w, status, v)
		return
	}

	st, err := toStruct(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeProto(w, status, st)
}

// toStruct converts a JSON-serialisable value into a structpb.Struct. Values
// that are not JSON objects are wrapped under "items".
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal response")
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		m = map[string]any{"items": decoded}
	}
	st, err := structpb.NewStruct(m)
	return st, errors.Wrap(err, "build protobuf struct")
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", protobufType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
