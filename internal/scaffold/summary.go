package scaffold

import (
	"fmt"
	"strings"

	"go.eggybyte.com/foundry/internal/request"
	"go.eggybyte.com/foundry/internal/toolrunner"
	"go.eggybyte.com/foundry/internal/ui"
)

// NextSteps lists what the user runs after generation, in order.
func (g *Generator) NextSteps(req *request.Request, provisioned bool) []string {
	steps := []string{
		"cd " + req.ProjectName(),
		"cp .env.example .env",
	}
	if !provisioned {
		deps := g.cat.DependenciesFor(string(req.Persistence()), string(req.Database()))
		steps = append(steps, fmt.Sprintf("python3 -m venv %s && %s install %s",
			toolrunner.EnvironmentDir, toolrunner.EnvBinary("pip"), strings.Join(deps, " ")))
	}
	if g.migrationTool(req) != "" {
		steps = append(steps, "./scripts/migrate.sh")
	}
	steps = append(steps, "./scripts/dev.sh")
	if req.EmitDeployment() {
		steps = append(steps, "docker compose up -d --build")
	}
	return append(steps, "open http://localhost:8000/docs")
}

// Summary describes a plan or a finished generation for the terminal.
func (g *Generator) Summary(req *request.Request, plan *Plan, provisioned, dryRun bool) ui.Summary {
	title := fmt.Sprintf("Project %s created", req.ProjectName())
	if dryRun {
		title = fmt.Sprintf("Project %s planned (dry run)", req.ProjectName())
	}

	s := ui.Summary{
		Title: title,
		Fields: [][2]string{
			{"package", req.Package()},
			{"architecture", string(req.Architecture())},
			{"persistence", string(req.Persistence())},
			{"database", string(req.Database())},
			{"contexts", strings.Join(req.Contexts(), ", ")},
			{"api prefix", req.APIPrefix()},
			{"files", fmt.Sprint(len(plan.Files))},
		},
	}
	if dryRun {
		for _, f := range plan.Files {
			line := f.Path
			if f.Executable {
				line += " (executable)"
			}
			s.Files = append(s.Files, line)
		}
		return s
	}
	s.NextSteps = g.NextSteps(req, provisioned)
	return s
}
