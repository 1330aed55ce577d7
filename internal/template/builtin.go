package template

// Template names accepted by Body and Render.
const (
	Project    = "project"
	Idea       = "idea"
	Experiment = "experiment"
	Validation = "validation"
	Results    = "results"
)

var builtinBodies = map[string]string{
	Project:    projectBody,
	Idea:       ideaBody,
	Experiment: experimentBody,
	Validation: validationBody,
	Results:    resultsBody,
}

// Overridable lists the templates `lab init` writes into templates/.
var Overridable = []string{Project, Idea, Experiment}

// Starter returns the starter file `lab init` writes for name: front-matter
// placeholders for reference followed by the built-in body. Only the body is
// used when creating entities.
func Starter(name string) string {
	return starterFrontmatter[name] + "\n" + builtinBodies[name]
}

var starterFrontmatter = map[string]string{
	Project: `---
title: {{title}}
type: {{type}}
created: {{created}}
updated: {{updated}}
status: active
tags: []
priority: medium
---
`,
	Idea: `---
title: {{title}}
project: {{project}}
created: {{created}}
updated: {{updated}}
status: unverified
tags: []
priority: medium
---
`,
	Experiment: `---
title: {{title}}
idea: {{idea}}
project: {{project}}
created: {{created}}
updated: {{updated}}
status: planned
tags: []
---
`,
}

const projectBody = `## Project Overview

[Brief description of this project]

## Goals

1. [Goal 1]
2. [Goal 2]
3. [Goal 3]

## Related Papers

- [Paper Title]
- [Paper Title]

## Timeline

- [ ] [Milestone 1]
- [ ] [Milestone 2]
- [ ] [Milestone 3]
`

const ideaBody = `## Idea Description

[Describe your idea]

## Hypothesis

[What do you think will happen?]

## Approach

[How will you test this idea?]

## Related Work

[Papers, projects, or previous experiments]

## Next Steps

- [ ] [Next action item]
`

const experimentBody = `## Experiment Setup

[Describe your experimental setup]

- Dataset:
- Parameters:
- Metrics:
- Baseline:

## Hypothesis

[Your hypothesis about what will happen]

## Procedure

[Step-by-step procedure]

1. [Step 1]
2. [Step 2]
3. [Step 3]

## Expected Results

[What you expect to happen]

## Actual Results

[Fill in after experiment completes]

## Conclusion

[Your conclusion from the experiment]
`

const validationBody = `## Validation Summary

[Idea not yet validated]

## Experiments Conducted

[No experiments yet]

## Key Findings

[Fill in after validation]

## Next Steps

- [ ] Create experiment plan
- [ ] Run experiment
`

const resultsBody = `# Experiment Results

[Fill in after experiment completes]

## Metrics

| Metric | Value |
|--------|-------|
|        |       |

## Visualizations

[Add plots, charts, or images]

## Raw Data

[Add links to raw data files]
`
