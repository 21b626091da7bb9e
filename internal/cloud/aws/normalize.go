package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

func isTerminated(inst types.Instance) bool {
	return inst.State != nil && inst.State.Name == types.InstanceStateNameTerminated
}

// instanceName returns the Name tag, falling back to the instance id
func instanceName(inst types.Instance) string {
	for _, tag := range inst.Tags {
		if aws.ToString(tag.Key) == "Name" && aws.ToString(tag.Value) != "" {
			return aws.ToString(tag.Value)
		}
	}
	return aws.ToString(inst.InstanceId)
}

// normalizeInstance maps an EC2 instance onto a Host. Undetailed hosts only
// carry identity fields.
func normalizeInstance(cfg models.CloudConfig, owner string, inst types.Instance, detailed, private bool) models.Host {
	h := models.Host{
		ID:     aws.ToString(inst.InstanceId),
		Name:   instanceName(inst),
		Cloud:  cfg.Name,
		Region: cfg.Region,
	}
	if !detailed {
		return h
	}

	h.Detailed = true
	h.ProjectID = owner
	h.Flavor = string(inst.InstanceType)
	h.Image = aws.ToString(inst.ImageId)
	if inst.State != nil {
		h.Status = string(inst.State.Name)
	}
	if inst.Placement != nil {
		h.AvailabilityZone = aws.ToString(inst.Placement.AvailabilityZone)
		h.HostID = aws.ToString(inst.Placement.HostId)
	}
	if len(inst.Tags) > 0 {
		h.Metadata = make(map[string]string, len(inst.Tags))
		for _, tag := range inst.Tags {
			h.Metadata[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
	}

	network := aws.ToString(inst.SubnetId)
	if ip := aws.ToString(inst.PrivateIpAddress); ip != "" {
		h.PrivateV4 = ip
		h.Addresses = append(h.Addresses, models.Address{Network: network, Address: ip, Version: 4, Type: "fixed"})
	}
	if ip := aws.ToString(inst.PublicIpAddress); ip != "" {
		h.PublicV4 = ip
		h.Addresses = append(h.Addresses, models.Address{Network: network, Address: ip, Version: 4, Type: "floating"})
	}
	for _, nic := range inst.NetworkInterfaces {
		for _, v6 := range nic.Ipv6Addresses {
			ip := aws.ToString(v6.Ipv6Address)
			if ip == "" {
				continue
			}
			if h.PublicV6 == "" {
				h.PublicV6 = ip
			}
			h.Addresses = append(h.Addresses, models.Address{Network: aws.ToString(nic.SubnetId), Address: ip, Version: 6, Type: "fixed"})
		}
	}

	h.SelectInterfaceIP(private)
	return h
}
