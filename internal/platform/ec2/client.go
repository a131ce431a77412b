// Package ec2 provides a wrapper around the AWS EC2 API.
package ec2

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Tags applied to student instances. The (TagCourse, TagStudent) pair is the
// durable identity of an instance; instance ids are rediscovered by tag
// query, never cached locally.
const (
	TagCourse  = "canvastools-course"
	TagStudent = "canvastools-student"
	TagCheck   = "canvastools-check"
)

// Instance state names reported by DescribeInstances.
const (
	StatePending    = "pending"
	StateRunning    = "running"
	StateStopping   = "stopping"
	StateStopped    = "stopped"
	StateTerminated = "terminated"
)

// Instance is a summary of a student instance.
type Instance struct {
	ID       string
	Name     string
	Student  string
	State    string
	PublicIP string
}

// LaunchTemplate identifies an EC2 launch template.
type LaunchTemplate struct {
	ID   string
	Name string
}

// LaunchOpts holds all parameters for launching one instance.
type LaunchOpts struct {
	// Template is a launch template name or ID. IDs start with "lt-".
	// The template owns the AMI, instance type, key pair, and security
	// group choices.
	Template string
	NameTag  string
	Tags     map[string]string
	UserData string
}

// API defines the interface for EC2 instance management.
type API interface {
	// LaunchInstance requests one instance from a launch template and
	// returns its instance id.
	LaunchInstance(ctx context.Context, opts LaunchOpts) (string, error)
	// DescribeInstances returns summaries for the given instance ids.
	DescribeInstances(ctx context.Context, ids []string) ([]Instance, error)
	// FindInstancesByTag returns non-terminated instances carrying the tag.
	FindInstancesByTag(ctx context.Context, key, value string) ([]Instance, error)
	// ListLaunchTemplates returns the account's launch templates.
	ListLaunchTemplates(ctx context.Context) ([]LaunchTemplate, error)
	// TerminateInstances requests termination; it does not wait.
	TerminateInstances(ctx context.Context, ids []string) error
}

// Client implements API against the real EC2 service.
type Client struct {
	ec2 *awsec2.Client
}

// NewClient wraps an SDK EC2 client.
func NewClient(sdk *awsec2.Client) *Client {
	return &Client{ec2: sdk}
}

// LaunchInstance implements API.
func (c *Client) LaunchInstance(ctx context.Context, opts LaunchOpts) (string, error) {
	input := buildRunInstancesInput(opts)

	out, err := c.ec2.RunInstances(ctx, input)
	if err != nil {
		return "", wrapAPIError("run instances", err)
	}
	if len(out.Instances) == 0 || out.Instances[0].InstanceId == nil {
		return "", wrapAPIError("run instances", errNoInstanceReturned)
	}
	return *out.Instances[0].InstanceId, nil
}

// buildRunInstancesInput translates LaunchOpts to the SDK input. Split out
// so the translation is testable without a live client.
func buildRunInstancesInput(opts LaunchOpts) *awsec2.RunInstancesInput {
	spec := &types.LaunchTemplateSpecification{}
	if strings.HasPrefix(opts.Template, "lt-") {
		spec.LaunchTemplateId = aws.String(opts.Template)
	} else {
		spec.LaunchTemplateName = aws.String(opts.Template)
	}

	tags := []types.Tag{{Key: aws.String("Name"), Value: aws.String(opts.NameTag)}}
	for k, v := range opts.Tags {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}

	input := &awsec2.RunInstancesInput{
		LaunchTemplate: spec,
		MinCount:       aws.Int32(1),
		MaxCount:       aws.Int32(1),
		TagSpecifications: []types.TagSpecification{{
			ResourceType: types.ResourceTypeInstance,
			Tags:         tags,
		}},
	}
	if opts.UserData != "" {
		input.UserData = aws.String(opts.UserData)
	}
	return input
}

// DescribeInstances implements API.
func (c *Client) DescribeInstances(ctx context.Context, ids []string) ([]Instance, error) {
	out, err := c.ec2.DescribeInstances(ctx, &awsec2.DescribeInstancesInput{
		InstanceIds: ids,
	})
	if err != nil {
		return nil, wrapAPIError("describe instances", err)
	}
	return flattenReservations(out.Reservations), nil
}

// FindInstancesByTag implements API. Terminated and shutting-down instances
// are excluded so re-entrant runs only see live resources.
func (c *Client) FindInstancesByTag(ctx context.Context, key, value string) ([]Instance, error) {
	out, err := c.ec2.DescribeInstances(ctx, &awsec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String("tag:" + key), Values: []string{value}},
			{Name: aws.String("instance-state-name"), Values: []string{
				StatePending, StateRunning, StateStopping, StateStopped,
			}},
		},
	})
	if err != nil {
		return nil, wrapAPIError("find instances by tag", err)
	}
	return flattenReservations(out.Reservations), nil
}

// ListLaunchTemplates implements API.
func (c *Client) ListLaunchTemplates(ctx context.Context) ([]LaunchTemplate, error) {
	var templates []LaunchTemplate

	paginator := awsec2.NewDescribeLaunchTemplatesPaginator(c.ec2, &awsec2.DescribeLaunchTemplatesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapAPIError("describe launch templates", err)
		}
		for _, lt := range page.LaunchTemplates {
			templates = append(templates, LaunchTemplate{
				ID:   aws.ToString(lt.LaunchTemplateId),
				Name: aws.ToString(lt.LaunchTemplateName),
			})
		}
	}
	return templates, nil
}

// TerminateInstances implements API.
func (c *Client) TerminateInstances(ctx context.Context, ids []string) error {
	_, err := c.ec2.TerminateInstances(ctx, &awsec2.TerminateInstancesInput{
		InstanceIds: ids,
	})
	if err != nil {
		return wrapAPIError("terminate instances", err)
	}
	return nil
}

// flattenReservations converts the nested DescribeInstances response into
// flat instance summaries.
func flattenReservations(reservations []types.Reservation) []Instance {
	var instances []Instance
	for _, reservation := range reservations {
		for _, inst := range reservation.Instances {
			summary := Instance{
				ID:       aws.ToString(inst.InstanceId),
				PublicIP: aws.ToString(inst.PublicIpAddress),
			}
			if inst.State != nil {
				summary.State = string(inst.State.Name)
			}
			for _, tag := range inst.Tags {
				switch aws.ToString(tag.Key) {
				case "Name":
					summary.Name = aws.ToString(tag.Value)
				case TagStudent:
					summary.Student = aws.ToString(tag.Value)
				}
			}
			instances = append(instances, summary)
		}
	}
	return instances
}
