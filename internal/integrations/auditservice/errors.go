package auditservice

import "errors"

var (
	// ErrInternal возвращается при ошибках формирования или выполнения запроса
	ErrInternal = errors.New("auditservice: internal error")

	// ErrInvalidResponse возвращается при неожиданном ответе аудит-сервиса
	ErrInvalidResponse = errors.New("auditservice: invalid response")
)
