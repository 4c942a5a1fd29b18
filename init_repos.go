package main

import (
	"database/sql"

	"github.com/Yash-SD99/Echoing-Hearts/repository"
)

// Repositories holds one repository per aggregate. All of them share the
// same *sql.DB.
type Repositories struct {
	User         repository.UserRepository
	Profile      repository.ProfileRepository
	Session      repository.SessionRepository
	ResetToken   repository.PasswordResetRepository
	Whisper      repository.WhisperRepository
	Conversation repository.ConversationRepository
	Block        repository.BlockRepository
}

func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:         repository.NewSQLiteUserRepo(conn),
		Profile:      repository.NewSQLiteProfileRepo(conn),
		Session:      repository.NewSQLiteSessionRepo(conn),
		ResetToken:   repository.NewSQLiteResetTokenRepo(conn),
		Whisper:      repository.NewSQLiteWhisperRepo(conn),
		Conversation: repository.NewSQLiteConversationRepo(conn),
		Block:        repository.NewSQLiteBlockRepo(conn),
	}
}
