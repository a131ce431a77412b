package identity

import (
	"encoding/json"
	"fmt"
)

// policyDocument is the wire form of an IAM policy document.
type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string          `json:"Sid"`
	Effect    string          `json:"Effect"`
	Action    []string        `json:"Action"`
	Resource  string          `json:"Resource"`
	Condition policyCondition `json:"Condition"`
}

type policyCondition struct {
	StringEquals map[string]string `json:"StringEquals"`
}

// accessPolicyDocument renders the shared student policy: EC2 describe and
// lifecycle actions, restricted to a single region.
func accessPolicyDocument(region string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{
			{
				Sid:    "AllowDescribeActions",
				Effect: "Allow",
				Action: []string{
					"ec2:DescribeInstances",
					"ec2:DescribeImages",
					"ec2:DescribeKeyPairs",
					"ec2:DescribeSecurityGroups",
					"ec2:DescribeSubnets",
					"ec2:DescribeVpcs",
					"ec2:DescribeAvailabilityZones",
				},
				Resource: "*",
				Condition: policyCondition{
					StringEquals: map[string]string{"ec2:Region": region},
				},
			},
			{
				Sid:    "AllowEC2LifecycleActions",
				Effect: "Allow",
				Action: []string{
					"ec2:RunInstances",
					"ec2:StartInstances",
					"ec2:StopInstances",
					"ec2:TerminateInstances",
					"ec2:CreateKeyPair",
					"ec2:CreateSecurityGroup",
					"ec2:AuthorizeSecurityGroupIngress",
					"ec2:AuthorizeSecurityGroupEgress",
					"ec2:CreateTags",
				},
				Resource: "*",
				Condition: policyCondition{
					StringEquals: map[string]string{"ec2:Region": region},
				},
			},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy document: %w", err)
	}
	return string(data), nil
}
