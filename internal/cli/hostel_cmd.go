package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hostelhub/hostel-api/internal/client"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	"github.com/spf13/cobra"
)

func addListFlags(cmd *cobra.Command, opts *client.ListOptions, withStatus bool) {
	if withStatus {
		cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status")
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum items to return")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Items to skip")
}

func newComplaintsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complaints",
		Aliases: []string{"complaint"},
		Short:   "File and triage complaints",
	}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List complaints (students see their own)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.guard(cmd.Context(), false); err != nil {
				return err
			}
			items, err := a.client.Complaints(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.render(items, []string{"ID", "STUDENT", "ROOM", "CATEGORY", "STATUS", "FILED"}, func() [][]string {
				rows := make([][]string, 0, len(items))
				for _, c := range items {
					rows = append(rows, []string{c.ID, c.StudentName, deref(c.RoomNumber), c.Category, string(c.Status), day(c.CreatedAt)})
				}
				return rows
			})
		},
	}
	addListFlags(list, &opts, true)

	var req model.CreateComplaintRequest
	submit := &cobra.Command{
		Use:   "submit",
		Short: "File a complaint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.guard(cmd.Context(), false); err != nil {
				return err
			}
			c, err := a.client.SubmitComplaint(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printCreated(c, c.ID)
		},
	}
	submit.Flags().StringVar(&req.Category, "category", "", "Category, e.g. Plumbing")
	submit.Flags().StringVar(&req.Description, "description", "", "What is wrong")
	_ = submit.MarkFlagRequired("category")
	_ = submit.MarkFlagRequired("description")

	status := &cobra.Command{
		Use:   "status <id> <Pending|In Progress|Resolved>",
		Short: "Move a complaint to a new status (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard(cmd.Context(), true); err != nil {
				return err
			}
			c, err := a.client.SetComplaintStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printCreated(c, c.ID+" "+string(c.Status))
		},
	}

	photo := &cobra.Command{
		Use:   "photo <id> <file>",
		Short: "Attach a photo to a complaint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard(cmd.Context(), false); err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			ct := mime.TypeByExtension(filepath.Ext(args[1]))
			c, err := a.client.UploadComplaintPhoto(cmd.Context(), args[0], ct, f)
			if err != nil {
				return err
			}
			return a.printCreated(c, deref(c.PhotoURL))
		},
	}

	cmd.AddCommand(list, submit, status, photo)
	return cmd
}

func newLeaveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Apply for and decide leave",
	}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List leave applications (students see their own)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.guard(cmd.Context(), false); err != nil {
				return err
			}
			items, err := a.client.LeaveApplications(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.render(items, []string{"ID", "STUDENT", "TYPE", "FROM", "TO", "STATUS"}, func() [][]string {
				rows := make([][]string, 0, len(items))
				for _, l := range items {
					rows = append(rows, []string{l.ID, l.StudentName, string(l.LeaveType), day(l.StartDate), day(l.EndDate), string(l.Status)})
				}
				return rows
			})
		},
	}
	addListFlags(list, &opts, true)

	var (
		req          model.CreateLeaveRequest
		leaveType    string
		parent, addr string
	)
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Apply for leave",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.guard(cmd.Context(), false); err != nil {
				return err
			}
			req.LeaveType = model.LeaveType(leaveType)
			if cmd.Flags().Changed("parent-contact") {
				req.ParentContact = &parent
			}
			if cmd.Flags().Changed("address") {
				req.AddressDuringLeave = &addr
			}
			l, err := a.client.SubmitLeave(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printCreated(l, l.ID)
		},
	}
	apply.Flags().StringVar(&leaveType, "type", string(model.LeaveHome), "home, medical, emergency or other")
	apply.Flags().StringVar(&req.StartDate, "from", "", "First day, YYYY-MM-DD")
	apply.Flags().StringVar(&req.EndDate, "to", "", "Last day, YYYY-MM-DD")
	apply.Flags().StringVar(&req.Reason, "reason", "", "Reason for leave")
	apply.Flags().StringVar(&parent, "parent-contact", "", "Parent or guardian phone")
	apply.Flags().StringVar(&addr, "address", "", "Address during leave")
	for _, f := range []string{"from", "to", "reason"} {
		_ = apply.MarkFlagRequired(f)
	}

	status := &cobra.Command{
		Use:   "status <id> <Pending|Approved|Rejected>",
		Short: "Approve or reject an application (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard(cmd.Context(), true); err != nil {
				return err
			}
			l, err := a.client.SetLeaveStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printCreated(l, l.ID+" "+string(l.Status))
		},
	}

	cmd.AddCommand(list, apply, status)
	return cmd
}

func newNoticesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notices",
		Aliases: []string{"notice"},
		Short:   "Read and publish notices",
	}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List notices, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.guard(cmd.Context(), false); err != nil {
				return err
			}
			items, err := a.client.Notices(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.render(items, []string{"ID", "DATE", "TYPE", "NEW", "TITLE"}, func() [][]string {
				rows := make([][]string, 0, len(items))
				for _, n := range items {
					rows = append(rows, []string{n.ID, day(n.Date), string(n.Type), strconv.FormatBool(n.IsNew), truncate(n.Title, 60)})
				}
				return rows
			})
		},
	}
	addListFlags(list, &opts, false)

	var (
		req        model.CreateNoticeRequest
		noticeType string
	)
	post := &cobra.Command{
		Use:   "post",
		Short: "Publish a notice (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.guard(cmd.Context(), true); err != nil {
				return err
			}
			req.Type = model.NoticeType(noticeType)
			n, err := a.client.CreateNotice(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printCreated(n, n.ID)
		},
	}
	post.Flags().StringVar(&req.Title, "title", "", "Notice title")
	post.Flags().StringVar(&req.Description, "description", "", "Notice body")
	post.Flags().StringVar(&noticeType, "type", string(model.NoticeGeneral), "event, mess, billing, important or general")
	_ = post.MarkFlagRequired("title")
	_ = post.MarkFlagRequired("description")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notice (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard(cmd.Context(), true); err != nil {
				return err
			}
			if err := a.client.DeleteNotice(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, post, del)
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your dashboard, or the hostel-wide one with --admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.guard(cmd.Context(), admin); err != nil {
				return err
			}
			if admin {
				d, err := a.client.AdminDashboard(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(d, []string{"COMPLAINTS", "PENDING", "IN PROGRESS", "RESOLVED", "PENDING LEAVE"}, func() [][]string {
					return [][]string{{
						strconv.Itoa(d.Complaints.Total), strconv.Itoa(d.Complaints.Pending),
						strconv.Itoa(d.Complaints.InProgress), strconv.Itoa(d.Complaints.Resolved),
						strconv.Itoa(d.PendingLeave),
					}}
				})
			}
			d, err := a.client.StudentDashboard(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(d, []string{"COMPLAINTS", "OPEN", "LEAVE", "PENDING LEAVE", "NOTICES"}, func() [][]string {
				return [][]string{{
					strconv.Itoa(d.Complaints.Total), strconv.Itoa(d.Complaints.Pending + d.Complaints.InProgress),
					strconv.Itoa(d.Leave.Total), strconv.Itoa(d.Leave.Pending), strconv.Itoa(len(d.Notices)),
				}}
			})
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "Show the hostel-wide dashboard (admin)")
	return cmd
}

// printCreated prints v in JSON mode or summary otherwise.
func (a *app) printCreated(v any, summary string) error {
	if a.output == "json" {
		return printJSON(a.out, v)
	}
	_, err := fmt.Fprintln(a.out, summary)
	return err
}
