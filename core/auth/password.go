package auth

import (
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"

	"clipper-mock/core/utils"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

type PasswordHash struct {
	Hash string
	Salt string
}

func HashPassword(password string) (*PasswordHash, error) {
	salt, err := utils.RandBytes(saltLen)
	if err != nil {
		return nil, err
	}
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return &PasswordHash{
		Hash: base64.RawStdEncoding.EncodeToString(key),
		Salt: base64.RawStdEncoding.EncodeToString(salt),
	}, nil
}

func VerifyPassword(password string, stored *PasswordHash) (bool, error) {
	if stored == nil {
		return false, errors.New("no stored password")
	}
	salt, err := base64.RawStdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return false, err
	}
	expected, err := base64.RawStdEncoding.DecodeString(stored.Hash)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return utils.ConstantTimeEquals(key, expected), nil
}

func MustHashPassword(password string) *PasswordHash {
	p, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	return p
}
