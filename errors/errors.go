package errors

import "fmt"

var (
	ErrEmptyNickname  = fmt.Errorf("please enter a nickname")
	ErrEmptyRoomCode  = fmt.Errorf("please enter a room code")
	ErrEmptyURL       = fmt.Errorf("please enter a YouTube URL")
	ErrRoomNotFound   = fmt.Errorf("room not found")
	ErrRoomFull       = fmt.Errorf("room is full (max %d users)", 4)
	ErrInvalidURL     = fmt.Errorf("invalid YouTube URL")
	ErrNotHost        = fmt.Errorf("only the host can load videos")
	ErrNoSession      = fmt.Errorf("no active session")
	ErrInvalidPayload = fmt.Errorf("invalid event payload")
	ErrWorkerPanic    = fmt.Errorf("worker panic")
)
