package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomIDTaken    = errors.New("room code is already in use")
	ErrInvalidRoomID  = errors.New("room id has no usable characters")
	ErrRoomFinished   = errors.New("room is finished")
	ErrNotOwner       = errors.New("only the room owner can perform this action")
	ErrCodeGeneration = errors.New("could not allocate a unique room code")
	ErrWrongPassword  = errors.New("wrong room password")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// User errors
	ErrUserNotFound        = errors.New("user not found")
	ErrSignInRequired      = errors.New("sign-in required")
	ErrCredentialsNotFound = errors.New("credentials not found")
)
