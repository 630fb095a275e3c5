// Package prompt renders the generation prompts and the corrective feedback
// sent to the model during refinement.
package prompt

import (
	"fmt"
	"strings"

	"github.com/aretw0/fsmgen/pkg/domain"
)

const fence = "```"

// FSMGeneration asks the model for an FSM derived from a user requirement.
func FSMGeneration(requirement string) string {
	var b strings.Builder
	b.WriteString("You can generate corresponding finite state machines based on user requirements. ")
	b.WriteString("**Please note that there should be no extra output other than finite state machines**:\n")
	b.WriteString("### Please study the following content of finite state machines carefully, ")
	b.WriteString("and the generated finite state machines should strictly follow the writing format:\n")
	b.WriteString(fence + "json\n" + FSMTemplate + "\n" + fence + "\n")
	b.WriteString("### The user requirements are as follows:\n")
	b.WriteString(`"""` + "\n" + requirement + "\n" + `"""`)
	return b.String()
}

// CodeGeneration asks the model to implement the FSM accepted earlier in the conversation.
func CodeGeneration(version string) string {
	return fmt.Sprintf("Then please generate the corresponding smart contract code (single contract, solidity version is %s) "+
		"based on the finite state machine generated above, "+
		"**please note that there should be no extra output other than code**.", version)
}

// FSMIssues collects every defect found in a proposed FSM.
type FSMIssues struct {
	ParseErrors []string
	Structural  string // empty when the structural checks passed
	Unreachable []string
	NoCycle     bool
}

// Empty reports whether there is nothing to give feedback about.
func (i FSMIssues) Empty() bool {
	return len(i.ParseErrors) == 0 && i.Structural == "" && len(i.Unreachable) == 0 && !i.NoCycle
}

// FSMFeedback enumerates every issue of the FSM in a single message.
func FSMFeedback(issues FSMIssues) string {
	var b strings.Builder
	b.WriteString("The generated FSM has the following issues, please regenerate the FSM:")
	for _, p := range issues.ParseErrors {
		b.WriteString("\n### The FSM could not be parsed: " + p)
	}
	if issues.Structural != "" {
		b.WriteString("\n### " + issues.Structural)
	}
	if len(issues.Unreachable) > 0 {
		b.WriteString("\n### List of unreachable states: " + strings.Join(issues.Unreachable, ", "))
	}
	if issues.NoCycle {
		b.WriteString("\n### The graph composed of states does not have cycles")
	}
	return b.String()
}

// CompileFeedback reports compiler diagnostics back to the model.
func CompileFeedback(diagnostics string) string {
	var b strings.Builder
	b.WriteString("The code you generated encountered the following error after compilation:\n")
	b.WriteString(fence + "Error Message\n" + diagnostics + "\n" + fence + "\n")
	b.WriteString("### Please fix the issue in the code based on the error message above and return the modified smart contract code.\n\n")
	b.WriteString("Please note:\n")
	b.WriteString("- If it is an undeclared identifier error, ensure that the variable or function is properly declared.\n")
	b.WriteString("- If it is a function call or method usage error, check if the parameters are passed correctly.\n")
	b.WriteString("- If it is a syntax error, correct the code according to Solidity language specifications.\n")
	b.WriteString("- If it is a permission-related error (such as a `require` statement), ensure the conditions are reasonable.\n")
	return b.String()
}

const separator = "--------------------------------------------------------------------------------------------"

// SecurityFeedback enumerates each finding with its type, level, line range and description.
func SecurityFeedback(findings []domain.MergedFinding) string {
	var b strings.Builder
	b.WriteString("The code you generated has the following potential security vulnerabilities:\n")
	for i, f := range findings {
		fmt.Fprintf(&b, "### %d. \n", i+1)
		fmt.Fprintf(&b, "- vulnerability type: %s\n", f.Check)
		fmt.Fprintf(&b, "- level: %s\n", f.Impact)
		fmt.Fprintf(&b, "- start line: %d\n", f.StartLine)
		fmt.Fprintf(&b, "- end line: %d\n", f.EndLine)
		fmt.Fprintf(&b, "- overall description: %s %s\n", strings.TrimSpace(f.Description), separator)
	}
	b.WriteString("Please fix the code according to the above security vulnerability tips.")
	return b.String()
}

// AnalysisFailureFeedback is sent when the analyzer could not process the code.
func AnalysisFailureFeedback(reason string) string {
	var b strings.Builder
	b.WriteString("The security analysis of the code you generated failed with the following error:\n")
	b.WriteString(fence + "Error Message\n" + reason + "\n" + fence + "\n")
	b.WriteString("Please fix the code so that it can be compiled and analyzed, and return the modified smart contract code.")
	return b.String()
}
