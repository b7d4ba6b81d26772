package issue

import "github.com/MHammad33/error-tracker/internal/model"

// スキーマ制約。titleはVARCHAR(255)、descriptionはTEXT(最大65535)に対応する。
const (
	maxTitleLength          = 255
	maxDescriptionLength    = 65535
	maxAssignedUserIDLength = 255
)

// validateCreate は課題作成入力のスキーマ検証を行う。
// 違反したフィールドごとのエラーを返す。問題がなければnilを返す。
func validateCreate(in CreateIssueInput) []model.FieldError {
	var fields []model.FieldError

	fields = appendTitleErrors(fields, in.Title)
	fields = appendDescriptionErrors(fields, in.Description)

	if in.Status != "" && !model.ValidStatus(in.Status) {
		fields = append(fields, model.FieldError{
			Field:   "status",
			Message: "Status must be one of OPEN, IN_PROGRESS, CLOSED",
		})
	}

	return fields
}

// validateUpdate は課題の部分更新入力のスキーマ検証を行う。
// nilのフィールドは検証対象外（変更されないため）。
func validateUpdate(in UpdateIssueInput) []model.FieldError {
	var fields []model.FieldError

	if in.Title != nil {
		fields = appendTitleErrors(fields, *in.Title)
	}
	if in.Description != nil {
		fields = appendDescriptionErrors(fields, *in.Description)
	}
	if in.Status != nil && !model.ValidStatus(*in.Status) {
		fields = append(fields, model.FieldError{
			Field:   "status",
			Message: "Status must be one of OPEN, IN_PROGRESS, CLOSED",
		})
	}
	if in.AssignedUserIDSet && in.AssignedUserID != nil {
		if *in.AssignedUserID == "" {
			fields = append(fields, model.FieldError{
				Field:   "assignedUserId",
				Message: "Assigned user ID is required",
			})
		} else if len(*in.AssignedUserID) > maxAssignedUserIDLength {
			fields = append(fields, model.FieldError{
				Field:   "assignedUserId",
				Message: "Assigned user ID is too long, max 255 characters are acceptable",
			})
		}
	}

	return fields
}

func appendTitleErrors(fields []model.FieldError, title string) []model.FieldError {
	if title == "" {
		return append(fields, model.FieldError{
			Field:   "title",
			Message: "Title is required",
		})
	}
	if len(title) > maxTitleLength {
		fields = append(fields, model.FieldError{
			Field:   "title",
			Message: "Title is too long, max 255 characters are acceptable",
		})
	}
	return fields
}

func appendDescriptionErrors(fields []model.FieldError, description string) []model.FieldError {
	if description == "" {
		return append(fields, model.FieldError{
			Field:   "description",
			Message: "Description is required",
		})
	}
	if len(description) > maxDescriptionLength {
		fields = append(fields, model.FieldError{
			Field:   "description",
			Message: "Description is too long, max 65535 characters are acceptable",
		})
	}
	return fields
}
