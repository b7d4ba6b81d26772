// Package model はドメインモデルを定義する。
package model

import "time"

// Status は課題のステータスを表す。
type Status string

const (
	// StatusOpen は未着手の課題を示す。
	StatusOpen Status = "OPEN"
	// StatusInProgress は対応中の課題を示す。
	StatusInProgress Status = "IN_PROGRESS"
	// StatusClosed は解決済みの課題を示す。
	StatusClosed Status = "CLOSED"
)

// ValidStatus は文字列がStatusのメンバーと完全一致するかを判定する。
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	default:
		return false
	}
}

// Issue はトラッキング対象の課題を表す。
// AssignedUserIDはnil許容の弱参照であり、ユーザーの所有権は持たない。
type Issue struct {
	ID             string
	Title          string
	Description    string
	Status         Status
	AssignedUserID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserSummary は課題に紐付く担当者のサマリー情報を表す。
type UserSummary struct {
	ID    string
	Name  string
	Email string
	Image string
}

// IssueWithUser は担当者サマリーをJOINした課題を表す。
// 担当者が未割り当ての場合AssignedUserはnil。
type IssueWithUser struct {
	Issue
	AssignedUser *UserSummary
}

// StatusSummary はダッシュボード用のステータス別課題数を表す。
type StatusSummary struct {
	Open       int
	InProgress int
	Closed     int
}

// Total は全ステータスの合計課題数を返す。
func (s StatusSummary) Total() int {
	return s.Open + s.InProgress + s.Closed
}
