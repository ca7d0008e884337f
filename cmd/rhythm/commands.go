package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rhythm-hub/rhythm-core/internal/application/query"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
)

func (c *cli) chartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print the birth chart as seen from a target date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			md, err := c.markdown()
			if err != nil {
				return err
			}
			info, err := c.birthInfo(cmd)
			if err != nil {
				return err
			}
			target, err := c.dateFlag(cmd, "date")
			if err != nil {
				return err
			}
			ch, err := chart.NewCalculator().ComputeChart(info, target)
			if err != nil {
				return err
			}
			if md {
				_, err = c.out.Write([]byte(c.presenter.RenderChart(ch)))
				return err
			}
			return c.writeJSON(ch)
		},
	}
	cmd.Flags().String("date", "", "target date, YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) dayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Print the daily document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := c.birthInfo(cmd)
			if err != nil {
				return err
			}
			date, err := c.dateFlag(cmd, "date")
			if err != nil {
				return err
			}
			r, err := c.parsedRole()
			if err != nil {
				return err
			}
			doc, err := query.NewGetDailyRhythmHandler(c.pipeline).Handle(cmd.Context(),
				query.GetDailyRhythmQuery{Birth: info, Date: date, Role: r})
			if err != nil {
				return err
			}
			return c.writeDocument(doc)
		},
	}
	cmd.Flags().String("date", "", "date, YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) rangeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Print daily documents for an inclusive date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			md, err := c.markdown()
			if err != nil {
				return err
			}
			info, err := c.birthInfo(cmd)
			if err != nil {
				return err
			}
			from, err := c.dateFlag(cmd, "from")
			if err != nil {
				return err
			}
			to, err := c.dateFlag(cmd, "to")
			if err != nil {
				return err
			}
			r, err := c.parsedRole()
			if err != nil {
				return err
			}
			res, err := query.NewGetRangeRhythmHandler(c.pipeline, c.maxDays, c.workers).Handle(cmd.Context(),
				query.GetRangeRhythmQuery{Birth: info, From: from, To: to, Role: r})
			if err != nil {
				return err
			}
			if md {
				docs := make([]content.Content, len(res.Days))
				for i, d := range res.Days {
					docs[i] = d.Content
				}
				_, err = c.out.Write([]byte(c.presenter.RenderMany(docs)))
				return err
			}
			return c.writeJSON(res)
		},
	}
	cmd.Flags().String("from", "", "first date, YYYY-MM-DD")
	cmd.Flags().String("to", "", "last date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (c *cli) monthCommand() *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print the monthly document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := c.birthInfo(cmd)
			if err != nil {
				return err
			}
			r, err := c.parsedRole()
			if err != nil {
				return err
			}
			doc, err := query.NewGetMonthlyRhythmHandler(c.pipeline).Handle(cmd.Context(),
				query.GetMonthlyRhythmQuery{Birth: info, Year: year, Month: month, Role: r})
			if err != nil {
				return err
			}
			return c.writeDocument(doc)
		},
	}
	now := time.Now()
	cmd.Flags().IntVar(&year, "year", now.Year(), "calendar year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "calendar month, 1-12")
	return cmd
}

func (c *cli) yearCommand() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "year",
		Short: "Print the yearly document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := c.birthInfo(cmd)
			if err != nil {
				return err
			}
			r, err := c.parsedRole()
			if err != nil {
				return err
			}
			doc, err := query.NewGetYearlyRhythmHandler(c.pipeline).Handle(cmd.Context(),
				query.GetYearlyRhythmQuery{Birth: info, Year: year, Role: r})
			if err != nil {
				return err
			}
			return c.writeDocument(doc)
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year")
	return cmd
}

func (c *cli) writeDocument(doc *query.Document) error {
	md, err := c.markdown()
	if err != nil {
		return err
	}
	if md {
		_, err = c.out.Write([]byte(c.presenter.Render(doc.Content)))
		return err
	}
	return c.writeJSON(doc)
}
