package wfiam

import (
	"net/url"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	log "github.com/sirupsen/logrus"
)

// IAMClient manages the role that the word counting function executes as
type IAMClient struct {
	iamiface.IAMAPI
}

// AssumePolicyDocument lets Lambda assume the function role
const AssumePolicyDocument = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Sid": "",
      "Effect": "Allow",
      "Principal": {
        "Service": [
          "lambda.amazonaws.com"
        ]
      },
      "Action": "sts:AssumeRole"
    }
  ]
}`

// AttachPolicyDocument grants the function read access to input text and
// write access to reports in S3, plus log delivery
const AttachPolicyDocument = `{
    "Version": "2012-10-17",
    "Statement": [
        {
            "Effect": "Allow",
            "Action": [
                "logs:CreateLogGroup",
                "logs:CreateLogStream",
                "logs:PutLogEvents"
            ],
            "Resource": "*"
        },
        {
            "Effect": "Allow",
            "Action": [
                "s3:GetObject",
                "s3:PutObject",
                "s3:ListBucket"
            ],
            "Resource": "arn:aws:s3:::*"
        }
    ]
}`

const wordfreqPolicyName = "wordfreq-permissions"

// policyDocumentsEqual compares a policy document returned by IAM, which is
// URL-encoded, against a local one
func policyDocumentsEqual(remote *string, local string) bool {
	if remote == nil {
		return false
	}
	decoded, err := url.QueryUnescape(*remote)
	if err != nil {
		decoded = *remote
	}
	return decoded == local
}

func (iamClient *IAMClient) deployRole(roleName string) (roleARN string, err error) {
	getParams := &iam.GetRoleInput{
		RoleName: aws.String(roleName),
	}
	exists, err := iamClient.GetRole(getParams)

	// Role already exists
	if exists != nil && exists.Role != nil && err == nil {
		if policyDocumentsEqual(exists.Role.AssumeRolePolicyDocument, AssumePolicyDocument) {
			log.Debugf("IAM Role '%s' already exists", roleName)
			return *exists.Role.Arn, nil
		}

		log.Debugf("Updating assume role policy of '%s'", roleName)
		updateParams := &iam.UpdateAssumeRolePolicyInput{
			PolicyDocument: aws.String(AssumePolicyDocument),
			RoleName:       aws.String(roleName),
		}
		_, err = iamClient.UpdateAssumeRolePolicy(updateParams)
		return *exists.Role.Arn, err
	}

	createParams := &iam.CreateRoleInput{
		AssumeRolePolicyDocument: aws.String(AssumePolicyDocument),
		RoleName:                 aws.String(roleName),
	}
	log.Debugf("Creating IAM role '%s'", roleName)
	role, err := iamClient.CreateRole(createParams)
	if err != nil {
		return "", err
	}
	return *role.Role.Arn, err
}

func (iamClient *IAMClient) deployPolicy(roleName string) error {
	getParams := &iam.GetRolePolicyInput{
		RoleName:   aws.String(roleName),
		PolicyName: aws.String(wordfreqPolicyName),
	}

	exists, err := iamClient.GetRolePolicy(getParams)

	// Policy already exists and is current
	if exists != nil && err == nil && policyDocumentsEqual(exists.PolicyDocument, AttachPolicyDocument) {
		log.Debugf("Policy '%s' already exists", wordfreqPolicyName)
		return nil
	}

	// PutRolePolicy both creates and replaces inline policies
	putParams := &iam.PutRolePolicyInput{
		PolicyName:     aws.String(wordfreqPolicyName),
		PolicyDocument: aws.String(AttachPolicyDocument),
		RoleName:       aws.String(roleName),
	}

	log.Debugf("Putting policy '%s'", *putParams.PolicyName)
	_, err = iamClient.PutRolePolicy(putParams)
	return err
}

// DeployPermissions creates or updates the function role and its policy,
// returning the role's ARN
func (iamClient *IAMClient) DeployPermissions(roleName string) (roleARN string, err error) {
	roleARN, err = iamClient.deployRole(roleName)
	if err != nil {
		return roleARN, err
	}

	err = iamClient.deployPolicy(roleName)

	return roleARN, err
}

// DeletePermissions removes the function role and its policy
func (iamClient *IAMClient) DeletePermissions(roleName string) error {
	deletePolicyParams := &iam.DeleteRolePolicyInput{
		PolicyName: aws.String(wordfreqPolicyName),
		RoleName:   aws.String(roleName),
	}
	log.Debugf("Deleting policy '%s'", wordfreqPolicyName)
	_, err := iamClient.DeleteRolePolicy(deletePolicyParams)
	if err != nil {
		return err
	}

	deleteRoleParams := &iam.DeleteRoleInput{
		RoleName: aws.String(roleName),
	}
	log.Debugf("Deleting role '%s'", roleName)
	_, err = iamClient.DeleteRole(deleteRoleParams)
	return err
}

// NewIAMClient initializes a new IAMClient
func NewIAMClient() *IAMClient {
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	return &IAMClient{
		iam.New(sess),
	}
}
