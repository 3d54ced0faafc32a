package handlers

import (
	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
)

func issueSummary(issue *domain.Issue) dto.IssueSummary {
	return dto.IssueSummary{
		ID:           issue.ID,
		TicketNumber: issue.TicketNumber,
		ProjectID:    issue.ProjectID,
		CategoryID:   issue.CategoryID,
		PriorityID:   issue.PriorityID,
		ReporterID:   issue.ReporterID,
		AssigneeID:   issue.AssigneeID,
		NodeID:       issue.NodeID,
		Title:        issue.Title,
		Status:       issue.Status,
		OccurredAt:   issue.OccurredAt,
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
	}
}

func issueDetail(detail *service.IssueDetail) dto.IssueDetailResponse {
	issue := detail.Issue
	response := dto.IssueDetailResponse{
		IssueSummary: issueSummary(issue),
		Description:  issue.Description,
		ResolvedAt:   issue.ResolvedAt,
		ClosedAt:     issue.ClosedAt,
		Assignments:  make([]dto.AssignmentResponse, 0, len(detail.Assignments)),
		Escalations:  make([]dto.EscalationResponse, 0, len(detail.Escalations)),
		Resolutions:  make([]dto.ResolutionResponse, 0, len(detail.Resolutions)),
		Rejects:      make([]dto.RejectResponse, 0, len(detail.Rejects)),
		ReRaises:     make([]dto.ReRaiseResponse, 0, len(detail.ReRaises)),
		Attachments:  attachmentList(detail.Attachments),
	}
	for i := range detail.Assignments {
		response.Assignments = append(response.Assignments, assignmentResponse(&detail.Assignments[i]))
	}
	for i := range detail.Escalations {
		response.Escalations = append(response.Escalations, escalationResponse(&detail.Escalations[i]))
	}
	for i := range detail.Resolutions {
		response.Resolutions = append(response.Resolutions, resolutionResponse(&detail.Resolutions[i]))
	}
	for i := range detail.Rejects {
		response.Rejects = append(response.Rejects, rejectResponse(&detail.Rejects[i]))
	}
	for i := range detail.ReRaises {
		response.ReRaises = append(response.ReRaises, reRaiseResponse(&detail.ReRaises[i]))
	}
	return response
}

func assignmentResponse(assignment *domain.IssueAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:           assignment.ID,
		AssigneeID:   assignment.AssigneeID,
		AssignedByID: assignment.AssignedByID,
		Status:       assignment.Status,
		RemovedByID:  assignment.RemovedByID,
		RemoveReason: assignment.RemoveReason,
		RemovedAt:    assignment.RemovedAt,
		CreatedAt:    assignment.CreatedAt,
	}
}

func escalationResponse(escalation *domain.IssueEscalation) dto.EscalationResponse {
	return dto.EscalationResponse{
		ID:            escalation.ID,
		FromNodeID:    escalation.FromNodeID,
		ToNodeID:      escalation.ToNodeID,
		Reason:        escalation.Reason,
		EscalatedByID: escalation.EscalatedByID,
		CreatedAt:     escalation.CreatedAt,
		Attachments:   attachmentList(escalation.Attachments),
	}
}

func resolutionResponse(resolution *domain.IssueResolution) dto.ResolutionResponse {
	return dto.ResolutionResponse{
		ID:           resolution.ID,
		Notes:        resolution.Notes,
		ResolvedByID: resolution.ResolvedByID,
		CreatedAt:    resolution.CreatedAt,
		Attachments:  attachmentList(resolution.Attachments),
	}
}

func rejectResponse(reject *domain.IssueReject) dto.RejectResponse {
	return dto.RejectResponse{
		ID:           reject.ID,
		Reason:       reject.Reason,
		RejectedByID: reject.RejectedByID,
		CreatedAt:    reject.CreatedAt,
		Attachments:  attachmentList(reject.Attachments),
	}
}

func reRaiseResponse(reRaise *domain.IssueReRaise) dto.ReRaiseResponse {
	return dto.ReRaiseResponse{
		ID:          reRaise.ID,
		Reason:      reRaise.Reason,
		RaisedByID:  reRaise.RaisedByID,
		ReRaisedAt:  reRaise.ReRaisedAt,
		CreatedAt:   reRaise.CreatedAt,
		Attachments: attachmentList(reRaise.Attachments),
	}
}

func attachmentList(attachments []domain.Attachment) []dto.AttachmentResponse {
	result := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		result = append(result, dto.AttachmentResponse{
			ID:        attachment.ID,
			FileName:  attachment.FileName,
			MimeType:  attachment.MimeType,
			SizeBytes: attachment.SizeBytes,
		})
	}
	return result
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
}

func notificationResponse(notification *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        notification.ID,
		IssueID:   notification.IssueID,
		EventType: notification.EventType,
		Message:   notification.Message,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
}

func nodeResponse(node *domain.HierarchyNode) dto.NodeResponse {
	return dto.NodeResponse{
		ID:        node.ID,
		ProjectID: node.ProjectID,
		ParentID:  node.ParentID,
		Kind:      node.Kind,
		Name:      node.Name,
		Level:     node.Level,
		IsActive:  node.IsActive,
		CreatedAt: node.CreatedAt,
	}
}

func instituteResponse(institute *domain.Institute) dto.InstituteResponse {
	return dto.InstituteResponse{
		ID:        institute.ID,
		Name:      institute.Name,
		IsActive:  institute.IsActive,
		CreatedAt: institute.CreatedAt,
	}
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          project.ID,
		InstituteID: project.InstituteID,
		Name:        project.Name,
		Description: project.Description,
		IsActive:    project.IsActive,
		CreatedAt:   project.CreatedAt,
	}
}
