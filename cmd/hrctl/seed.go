package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lucidata/hr-core-go/internal/app"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
)

// seedFile is the YAML layout read by `hrctl seed`. Records refer to
// each other by ref, so a manager must be listed before their reports.
type seedFile struct {
	Employees []seedEmployee `yaml:"employees"`
	Documents []seedDocument `yaml:"documents"`
	Workflows []seedWorkflow `yaml:"workflows"`
}

type seedEmployee struct {
	Ref        string `yaml:"ref"`
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	Email      string `yaml:"email"`
	Department string `yaml:"department"`
	Role       string `yaml:"role"`
	Manager    string `yaml:"manager"`
	HireDate   string `yaml:"hire_date"`
	Status     string `yaml:"status"`
}

type seedDocument struct {
	Employee   string `yaml:"employee"`
	Category   string `yaml:"category"`
	FileName   string `yaml:"file_name"`
	IssueDate  string `yaml:"issue_date"`
	ExpiryDate string `yaml:"expiry_date"`
}

type seedWorkflow struct {
	Type      string            `yaml:"type"`
	Requester string            `yaml:"requester"`
	Reason    string            `yaml:"reason"`
	Days      *int              `yaml:"days"`
	Details   map[string]string `yaml:"details"`
	Submit    bool              `yaml:"submit"`
}

type seedResult struct {
	Employees int               `json:"employees"`
	Documents int               `json:"documents"`
	Workflows int               `json:"workflows"`
	Refs      map[string]string `json:"refs"`
}

func readSeedFile(path string) (seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeed(raw)
}

func parseSeed(raw []byte) (seedFile, error) {
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return seedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	seen := make(map[string]bool, len(seed.Employees))
	for i, e := range seed.Employees {
		if e.Ref == "" {
			return seedFile{}, fmt.Errorf("employees[%d]: ref is required", i)
		}
		if seen[e.Ref] {
			return seedFile{}, fmt.Errorf("employees[%d]: duplicate ref %q", i, e.Ref)
		}
		if e.Manager != "" && !seen[e.Manager] {
			return seedFile{}, fmt.Errorf("employees[%d]: manager %q must be listed earlier", i, e.Manager)
		}
		seen[e.Ref] = true
	}
	for i, d := range seed.Documents {
		if !seen[d.Employee] {
			return seedFile{}, fmt.Errorf("documents[%d]: unknown employee ref %q", i, d.Employee)
		}
	}
	for i, w := range seed.Workflows {
		if !seen[w.Requester] {
			return seedFile{}, fmt.Errorf("workflows[%d]: unknown requester ref %q", i, w.Requester)
		}
	}
	return seed, nil
}

// applySeed goes through the services so every record is validated and
// audited like an API write.
func applySeed(ctx context.Context, s app.Services, seed seedFile) (seedResult, error) {
	res := seedResult{Refs: make(map[string]string, len(seed.Employees))}

	for _, e := range seed.Employees {
		req := employee.CreateEmployeeRequest{
			FirstName:    e.FirstName,
			LastName:     e.LastName,
			EmailCompany: e.Email,
			Department:   e.Department,
			Role:         e.Role,
			Status:       e.Status,
		}
		if e.Manager != "" {
			managerID := res.Refs[e.Manager]
			req.ManagerID = &managerID
		}
		if e.HireDate != "" {
			hireDate := e.HireDate
			req.HireDate = &hireDate
		}
		created, err := s.Employee.CreateEmployee(ctx, req)
		if err != nil {
			return res, fmt.Errorf("employee %s: %w", e.Ref, err)
		}
		res.Refs[e.Ref] = created.ID
		res.Employees++
	}

	for _, d := range seed.Documents {
		_, err := s.Document.Create(ctx, document.CreateDocumentRequest{
			EmployeeID: res.Refs[d.Employee],
			Category:   d.Category,
			FileName:   d.FileName,
			IssueDate:  d.IssueDate,
			ExpiryDate: d.ExpiryDate,
		})
		if err != nil {
			return res, fmt.Errorf("document %s: %w", d.FileName, err)
		}
		res.Documents++
	}

	for _, w := range seed.Workflows {
		_, err := s.Workflow.Create(ctx, workflow.CreateRequestRequest{
			Type:        w.Type,
			RequesterID: res.Refs[w.Requester],
			Reason:      w.Reason,
			Days:        w.Days,
			Details:     w.Details,
			Submit:      w.Submit,
		})
		if err != nil {
			return res, fmt.Errorf("workflow for %s: %w", w.Requester, err)
		}
		res.Workflows++
	}
	return res, nil
}
