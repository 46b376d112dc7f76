package base

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

// ErrScopeDone - scope уже завершен или завершается не по порядку
var ErrScopeDone = errors.New("transaction scope already finished")

// Execer реализуют *sql.Conn и *sql.Tx
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SessionDialect описывает, как СУБД сообщает результат запроса
type SessionDialect struct {
	// BeginStatement открывает транзакцию верхнего уровня
	BeginStatement string

	// MaxPacketSize читает лимит размера запроса. nil - без ограничения
	MaxPacketSize func(ctx context.Context, conn Execer) (int, error)

	// ClassifyError классифицирует ошибки драйвера, например bulk.ErrDuplicateKey
	ClassifyError func(error) error

	// LastRowID - драйвер возвращает id последней вставленной строки,
	// а не первой
	LastRowID bool
}

// Session реализует bulk.Session на одном соединении или транзакции.
// Результат запроса имеет смысл только на соединении, которое его
// выполнило, поэтому Session никогда не работает через пул
type Session struct {
	conn    Execer
	dialect SessionDialect
	depth   int
	last    sql.Result

	maxPacket       int
	maxPacketLoaded bool
}

var _ bulk.Session = (*Session)(nil)

// NewSession создает сессию на conn. inTx - conn уже в транзакции,
// тогда каждый scope становится savepoint
func NewSession(conn Execer, dialect SessionDialect, inTx bool) *Session {
	s := &Session{conn: conn, dialect: dialect}
	if inTx {
		s.depth = 1
	}
	return s
}

// Exec выполняет запрос и сохраняет sql.Result для LastInsertID/AffectedRows
func (s *Session) Exec(ctx context.Context, query string) (any, error) {
	s.last = nil
	res, err := s.conn.ExecContext(ctx, query)
	if err != nil {
		if s.dialect.ClassifyError != nil {
			err = s.dialect.ClassifyError(err)
		}
		return nil, err
	}
	s.last = res
	return res, nil
}

// LastInsertID возвращает id первой строки последнего запроса
func (s *Session) LastInsertID(ctx context.Context) (int64, error) {
	if s.last == nil {
		return 0, errors.New("no statement executed")
	}
	id, err := s.last.LastInsertId()
	if err != nil || !s.dialect.LastRowID {
		return id, err
	}
	affected, err := s.last.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, nil
	}
	return id - affected + 1, nil
}

// AffectedRows возвращает число затронутых строк последнего запроса
func (s *Session) AffectedRows(ctx context.Context) (int64, error) {
	if s.last == nil {
		return 0, errors.New("no statement executed")
	}
	return s.last.RowsAffected()
}

// MaxPacketSize запрашивает сервер один раз за сессию
func (s *Session) MaxPacketSize(ctx context.Context) (int, error) {
	if s.maxPacketLoaded {
		return s.maxPacket, nil
	}
	if s.dialect.MaxPacketSize != nil {
		n, err := s.dialect.MaxPacketSize(ctx, s.conn)
		if err != nil {
			return 0, err
		}
		s.maxPacket = n
	}
	s.maxPacketLoaded = true
	return s.maxPacket, nil
}

// BeginNested открывает транзакцию или savepoint, если транзакция уже открыта
func (s *Session) BeginNested(ctx context.Context) (bulk.Scope, error) {
	sc := &scope{session: s, level: s.depth + 1}
	stmt := s.dialect.BeginStatement
	if s.depth > 0 {
		sc.savepoint = fmt.Sprintf("tdtp_bulk_%d", sc.level)
		stmt = "SAVEPOINT " + sc.savepoint
	}
	if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
		return nil, err
	}
	s.depth = sc.level
	return sc, nil
}

type scope struct {
	session   *Session
	level     int
	savepoint string
	done      bool
}

func (sc *scope) Commit(ctx context.Context) error {
	if err := sc.finish(); err != nil {
		return err
	}
	stmt := "COMMIT"
	if sc.savepoint != "" {
		stmt = "RELEASE SAVEPOINT " + sc.savepoint
	}
	_, err := sc.session.conn.ExecContext(ctx, stmt)
	return err
}

func (sc *scope) Rollback(ctx context.Context) error {
	if err := sc.finish(); err != nil {
		return err
	}
	if sc.savepoint == "" {
		_, err := sc.session.conn.ExecContext(ctx, "ROLLBACK")
		return err
	}
	if _, err := sc.session.conn.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sc.savepoint); err != nil {
		return err
	}
	_, err := sc.session.conn.ExecContext(ctx, "RELEASE SAVEPOINT "+sc.savepoint)
	return err
}

// finish закрывает scope. Завершить можно только самый вложенный scope
func (sc *scope) finish() error {
	if sc.done || sc.level != sc.session.depth {
		return ErrScopeDone
	}
	sc.done = true
	sc.session.depth--
	return nil
}
