package services

import (
	"bate-papo/domain/chat"
	"bate-papo/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateJoin(cmd chat.JoinCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidName, err)
	}
	return nil
}

func validatePost(cmd chat.PostMessageCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return nil
}

func validateGet(cmd chat.GetMessageCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidLimit, err)
	}
	return nil
}
