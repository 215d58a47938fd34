package schemas

import (
	"encoding/base64"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostId is a mongo ObjectID exposed to clients as base64url.
type PostId primitive.ObjectID

const idLen = 12

func NewPostId() PostId {
	return PostId(primitive.NewObjectID())
}

func (id PostId) ToBase64URL() string {
	bytes := [idLen]byte(id)
	return base64.URLEncoding.EncodeToString(bytes[:])
}

func IDFromRawString(s string) (PostId, error) {
	bytes, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return PostId{}, err
	}

	if len(bytes) != idLen {
		return PostId{}, fmt.Errorf("incorrect length of postid, got %d", len(bytes))
	}
	var array [idLen]byte
	copy(array[:], bytes)
	return array, nil
}

func (id PostId) Hex() string {
	return primitive.ObjectID(id).Hex()
}

func IDFromHex(s string) (PostId, error) {
	objectId, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return PostId{}, err
	}
	return PostId(objectId), nil
}
