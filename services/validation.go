package services

import (
	"github.com/go-playground/validator/v10"

	"watch-party/errors"
)

var validate = validator.New()

type createRoomRequest struct {
	Nickname string `validate:"required,max=24"`
}

type joinRoomRequest struct {
	Nickname string `validate:"required,max=24"`
	Code     string `validate:"required,len=6,alphanum"`
}

func validateCreateRoom(nickname string) error {
	if err := validate.Struct(createRoomRequest{Nickname: nickname}); err != nil {
		return errors.ErrEmptyNickname
	}
	return nil
}

func validateJoinRoom(nickname, code string) error {
	err := validate.Struct(joinRoomRequest{Nickname: nickname, Code: code})
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, fe := range fieldErrors {
		if fe.Field() == "Nickname" {
			return errors.ErrEmptyNickname
		}
	}
	return errors.ErrEmptyRoomCode
}
