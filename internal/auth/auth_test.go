package auth

import (
	"testing"
	"time"

	"github.com/Spok95/school-management-api/internal/models"
)

func TestManager_IssueParseRoundtrip(t *testing.T) {
	m := NewManager("секрет", time.Hour)
	user := models.User{ID: 42, Email: "ivanov@school.local", Role: models.RoleTeacher}

	token, err := m.Issue(user)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.Role != models.RoleTeacher {
		t.Fatalf("неожиданные claims: %+v", claims)
	}
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewManager("один", time.Hour).Issue(models.User{ID: 1, Role: models.RoleStudent})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager("другой", time.Hour).Parse(token); err == nil {
		t.Fatal("токен с чужой подписью должен отклоняться")
	}
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := NewManager("секрет", -time.Minute)
	token, err := m.Issue(models.User{ID: 1, Role: models.RoleStudent})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Fatal("просроченный токен должен отклоняться")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("пароль123")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "пароль123") {
		t.Fatal("верный пароль не прошёл проверку")
	}
	if CheckPassword(hash, "другой") {
		t.Fatal("неверный пароль прошёл проверку")
	}
}
