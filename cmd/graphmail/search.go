package main

import (
	"fmt"

	"github.com/mwhelan/graphmail/internal/fields"
	"github.com/mwhelan/graphmail/internal/graph"
	"github.com/mwhelan/graphmail/internal/query"
	"github.com/mwhelan/graphmail/internal/search"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		text        string
		rawQuery    string
		from        string
		to          string
		subject     string
		after       string
		before      string
		folder      string
		preset      string
		attachments string
		unread      bool
		allFolders  bool
		max         int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search messages, falling back to broader queries as needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := fields.Preset(preset)
			if !fields.Valid(p) {
				return errors.Errorf("unknown field preset %q", preset)
			}

			svc, cfg, err := newService(cmd)
			if err != nil {
				return err
			}
			if folder == "" {
				folder = cfg.Folder
			}

			c := query.Criteria{
				Text:           text,
				RawQuery:       rawQuery,
				Sender:         from,
				Recipient:      to,
				Subject:        subject,
				UnreadOnly:     unread,
				ReceivedAfter:  after,
				ReceivedBefore: before,
				Folder:         folder,
				AllFolders:     allFolders,
			}
			switch attachments {
			case "":
			case "yes", "no":
				v := attachments == "yes"
				c.HasAttachments = &v
			default:
				return errors.Errorf("--attachments must be yes or no, got %q", attachments)
			}

			ex := &search.Executor{
				Pager:    &search.Pager{Client: svc, Log: log.Logger},
				PageSize: cfg.PageSize,
				Log:      log.Logger,
			}
			res, err := ex.Search(cmd.Context(), c, max, p)
			if err != nil {
				return errors.Wrap(err, "search failed")
			}

			for _, a := range res.Attempts {
				ev := log.Debug().Str("strategy", a.Strategy).Int("count", a.Count)
				if a.Err != "" {
					ev = ev.Str("error", a.Err)
				}
				ev.Msg("attempt")
			}
			fmt.Printf("%d results via %s\n", len(res.Items), res.Strategy)
			if res.Truncated {
				fmt.Println("(truncated: pagination aborted before the cap)")
			} else if res.HasMore {
				fmt.Println("(more results available)")
			}
			for _, it := range res.Items {
				fmt.Println(formatItem(it))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "free text to search for")
	cmd.Flags().StringVar(&rawQuery, "query", "", "raw search expression, bypasses all other filters")
	cmd.Flags().StringVar(&from, "from", "", "sender address or name fragment")
	cmd.Flags().StringVar(&to, "to", "", "recipient address or name fragment")
	cmd.Flags().StringVar(&subject, "subject", "", "subject fragment")
	cmd.Flags().StringVar(&after, "after", "", "only messages received after this date")
	cmd.Flags().StringVar(&before, "before", "", "only messages received before this date")
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread messages")
	cmd.Flags().StringVar(&attachments, "attachments", "", "require attachments: yes or no")
	cmd.Flags().StringVar(&folder, "folder", "", "scope folder (default from config)")
	cmd.Flags().BoolVar(&allFolders, "all-folders", false, "search the whole mailbox")
	cmd.Flags().IntVar(&max, "max", 25, "maximum results to return (0 for unbounded)")
	cmd.Flags().StringVar(&preset, "preset", string(fields.Search), "field projection preset")
	return cmd
}

func formatItem(it graph.Item) string {
	when := ""
	if it.ReceivedDateTime != nil {
		when = it.ReceivedDateTime.Format("2006-01-02 15:04")
	}
	from := ""
	if it.From != nil {
		from = it.From.EmailAddress.Address
		if from == "" {
			from = it.From.EmailAddress.Name
		}
	}
	marker := " "
	if it.IsRead != nil && !*it.IsRead {
		marker = "*"
	}
	return fmt.Sprintf("%s %-16s %-30s %s", marker, when, from, it.Subject)
}
