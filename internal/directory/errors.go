package directory

import "errors"

// Sentinel errors for the directory's failure taxonomy. The sheet store
// wraps its transport errors in ErrConnection/ErrWrite so callers can branch
// with errors.Is without knowing about the Sheets API.
var (
	// ErrConnection means the member sheet could not be reached or read:
	// bad credentials, network failure, or a missing spreadsheet.
	ErrConnection = errors.New("directory: cannot reach the member sheet")

	// ErrWrite means a row update or append was rejected by the backend.
	ErrWrite = errors.New("directory: row write failed")

	// ErrRowConflict means the row changed between load and save.
	// The write is not performed; the caller should reload and retry.
	ErrRowConflict = errors.New("directory: row changed since it was loaded")

	// ErrRowRange means the requested row index does not exist.
	ErrRowRange = errors.New("directory: row index out of range")
)

// UserMessage is a user-facing rendering of an error, with a short code the
// admin can quote when asking for help.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// MapError converts an internal error into a UserMessage. Technical detail
// stays in the server logs; only the sanitized message reaches the client.
func MapError(err error) UserMessage {
	switch {
	case errors.Is(err, ErrConnection):
		return UserMessage{
			Message: "데이터 연결 실패: 교적부 시트에 연결할 수 없습니다.",
			Action:  "잠시 후 다시 시도하세요. 계속되면 서비스 계정 권한을 확인하세요.",
			Code:    "SHEET001",
		}
	case errors.Is(err, ErrWrite):
		return UserMessage{
			Message: "저장 실패: 변경 내용이 시트에 기록되지 않았습니다.",
			Action:  "다시 시도하세요.",
			Code:    "SHEET002",
		}
	case errors.Is(err, ErrRowConflict):
		return UserMessage{
			Message: "다른 관리자가 이 행을 먼저 수정했습니다.",
			Action:  "목록을 새로 고친 뒤 다시 수정하세요.",
			Code:    "EDIT001",
		}
	case errors.Is(err, ErrRowRange):
		return UserMessage{
			Message: "해당 행을 찾을 수 없습니다.",
			Action:  "목록을 새로 고치세요.",
			Code:    "EDIT002",
		}
	default:
		return UserMessage{
			Message: "요청을 처리하지 못했습니다.",
			Action:  "다시 시도하세요.",
			Code:    "GEN001",
		}
	}
}
