package document

import (
	"github.com/minio/highwayhash"

	"infinity/internal/codec"
	"infinity/internal/model"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Fingerprint hashes the persisted form of a snapshot. Equal documents hash equal.
func Fingerprint(s model.Snapshot) (uint64, error) {
	data, err := codec.MarshalSnapshot(s)
	if err != nil {
		return 0, err
	}
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}
