package events

import "errors"

var (
	// ErrValidation: входные данные не прошли проверку. Возвращается до любых операций ввода-вывода.
	ErrValidation = errors.New("validation failed")
	// ErrRemoteUnavailable: удалённое хранилище не настроено, обращение к нему пропущено.
	ErrRemoteUnavailable = errors.New("remote storage unavailable")
	// ErrRemoteOperationFailed: конкретный вызов удалённого хранилища завершился ошибкой.
	ErrRemoteOperationFailed = errors.New("remote operation failed")
)
