package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marcosgalleterobbva/bb-cli/bitbucket"
	"github.com/marcosgalleterobbva/bb-cli/filter"
)

var (
	project  string
	repo     string
	jsonOut  bool
	prState  string
	prDir    string
	limit    int
	maxItems int
	filterEx string

	prTitle       string
	prDescription string
	fromBranch    string
	toBranch      string
	reviewers     []string
	draft         bool

	commentText string
)

// prCmd groups the pull request subcommands
var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Pull request operations",
}

func init() {
	prCmd.PersistentFlags().StringVarP(&project, "project", "p", "", "project key, e.g. GL_KAIF_APP-ID-2866825_DSG")
	prCmd.PersistentFlags().StringVarP(&repo, "repo", "r", "", "repository slug, e.g. mercury-viz")

	prCmd.AddCommand(prListCmd)
	prCmd.AddCommand(prGetCmd)
	prCmd.AddCommand(prCreateCmd)
	prCmd.AddCommand(prCommentCmd)
}

// resolveRepoFlags fills project/repo from config defaults when the flags
// were not given
func resolveRepoFlags() error {
	if project == "" {
		project = cfg.Defaults.Project
	}
	if repo == "" {
		repo = cfg.Defaults.Repo
	}
	if project == "" || repo == "" {
		return fmt.Errorf("both --project and --repo are required (or set defaults.project/defaults.repo in config)")
	}
	return nil
}

// prListCmd represents the pr list command
var prListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pull requests for a repository",
	RunE:  runPRList,
}

func init() {
	prListCmd.Flags().StringVar(&prState, "state", "OPEN", "OPEN, DECLINED, MERGED, or ALL (Bitbucket semantics)")
	prListCmd.Flags().StringVar(&prDir, "direction", "INCOMING", "INCOMING or OUTGOING")
	prListCmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	prListCmd.Flags().IntVar(&maxItems, "max-items", 0, "max items to fetch across pages (default from config)")
	prListCmd.Flags().StringVarP(&filterEx, "filter", "f", "", "client-side filter expression, e.g. 'state == \"OPEN\" && author contains \"garcia\"'")
	prListCmd.Flags().BoolVar(&jsonOut, "json", false, "print raw JSON instead of a table")
}

func runPRList(cmd *cobra.Command, args []string) error {
	if err := resolveRepoFlags(); err != nil {
		return err
	}

	if limit <= 0 {
		limit = cfg.Defaults.Limit
	}
	if maxItems <= 0 {
		maxItems = cfg.Defaults.MaxItems
	}

	var prFilter *filter.Filter
	if filterEx != "" {
		var err error
		prFilter, err = filter.Compile(filterEx)
		if err != nil {
			return err
		}
	}

	logger.Debug().
		Str("project", project).
		Str("repo", repo).
		Str("state", prState).
		Msg("Listing pull requests")

	ctx := context.Background()
	prs, err := bbClient.ListPullRequests(ctx, project, repo, bitbucket.ListOptions{
		State:     prState,
		Direction: prDir,
		Limit:     limit,
		MaxItems:  maxItems,
	})
	if err != nil {
		return err
	}

	if prFilter != nil {
		matched := make([]map[string]any, 0, len(prs))
		for _, pr := range prs {
			ok, err := prFilter.Match(pr)
			if err != nil {
				return err
			}
			if ok {
				matched = append(matched, pr)
			}
		}
		prs = matched
	}

	if jsonOut {
		return printJSON(prs)
	}
	printPRTable(prs)
	return nil
}

// prGetCmd represents the pr get command
var prGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a single pull request as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runPRGet,
}

func runPRGet(cmd *cobra.Command, args []string) error {
	if err := resolveRepoFlags(); err != nil {
		return err
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid pull request ID '%s': must be a positive integer", args[0])
	}

	pr, err := bbClient.GetPullRequest(context.Background(), project, repo, id)
	if err != nil {
		return err
	}
	return printJSON(pr)
}

// prCreateCmd represents the pr create command
var prCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pull request",
	RunE:  runPRCreate,
}

func init() {
	prCreateCmd.Flags().StringVar(&fromBranch, "from-branch", "", "source branch name (without refs/heads/)")
	prCreateCmd.Flags().StringVar(&toBranch, "to-branch", "", "target branch name (without refs/heads/)")
	prCreateCmd.Flags().StringVar(&prTitle, "title", "", "pull request title")
	prCreateCmd.Flags().StringVar(&prDescription, "description", "", "pull request description")
	prCreateCmd.Flags().StringArrayVar(&reviewers, "reviewer", nil, "reviewer username (repeatable)")
	prCreateCmd.Flags().BoolVar(&draft, "draft", false, "create the pull request as a draft (newer servers only)")
	prCreateCmd.Flags().BoolVar(&jsonOut, "json", false, "print raw JSON response")

	_ = prCreateCmd.MarkFlagRequired("from-branch")
	_ = prCreateCmd.MarkFlagRequired("to-branch")
	_ = prCreateCmd.MarkFlagRequired("title")
}

func runPRCreate(cmd *cobra.Command, args []string) error {
	if err := resolveRepoFlags(); err != nil {
		return err
	}

	opts := bitbucket.CreateOptions{
		Title:       prTitle,
		Description: prDescription,
		FromBranch:  fromBranch,
		ToBranch:    toBranch,
		Reviewers:   reviewers,
	}
	if cmd.Flags().Changed("draft") {
		opts.Draft = &draft
	}

	created, err := bbClient.CreatePullRequest(context.Background(), project, repo, opts)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(created)
	}

	fmt.Println(createdPRSummary(created))
	return nil
}

// prCommentCmd represents the pr comment command
var prCommentCmd = &cobra.Command{
	Use:   "comment <id>",
	Short: "Add a comment to a pull request",
	Args:  cobra.ExactArgs(1),
	RunE:  runPRComment,
}

func init() {
	prCommentCmd.Flags().StringVarP(&commentText, "text", "t", "", "comment text")
	_ = prCommentCmd.MarkFlagRequired("text")
}

func runPRComment(cmd *cobra.Command, args []string) error {
	if err := resolveRepoFlags(); err != nil {
		return err
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid pull request ID '%s': must be a positive integer", args[0])
	}

	resp, err := bbClient.AddComment(context.Background(), project, repo, id, commentText)
	if err != nil {
		return err
	}

	commentID := "?"
	if v, ok := resp["id"].(float64); ok {
		commentID = strconv.Itoa(int(v))
	}
	fmt.Printf("Added comment %s to PR #%d\n", commentID, id)
	return nil
}
