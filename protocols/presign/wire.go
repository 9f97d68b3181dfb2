package presign

import "github.com/caitsith-go/caitsith/pkg/codec"

func encodeAny(v interface{}) ([]byte, error) { return codec.Encode(v) }

func decodeInto(data []byte, v interface{}) error { return codec.Decode(data, v) }
